// Package store owns Hermes's single embedded SQLite database: schema
// migrations, the serialized write path, and the FTS5 virtual index. It
// corresponds to C1 (Schema & Store) and C3 (Hash Tracker) in the design.
package store

import "time"

// NodeType enumerates the kinds of content a Node can represent.
type NodeType string

const (
	NodeTypeFile     NodeType = "file"
	NodeTypeModule   NodeType = "module"
	NodeTypeFunction NodeType = "function"
	NodeTypeStruct   NodeType = "struct"
	NodeTypeImpl     NodeType = "impl"
	NodeTypeTrait    NodeType = "trait"
	NodeTypeEnum     NodeType = "enum"
	NodeTypeConcept  NodeType = "concept"
	NodeTypeDocument NodeType = "document"
)

// ValidNodeType reports whether t is a known node type.
func ValidNodeType(t NodeType) bool {
	switch t {
	case NodeTypeFile, NodeTypeModule, NodeTypeFunction, NodeTypeStruct,
		NodeTypeImpl, NodeTypeTrait, NodeTypeEnum, NodeTypeConcept, NodeTypeDocument:
		return true
	}
	return false
}

// EdgeType enumerates the kinds of relations between two nodes.
type EdgeType string

const (
	EdgeTypeCalls      EdgeType = "calls"
	EdgeTypeImports    EdgeType = "imports"
	EdgeTypeImplements EdgeType = "implements"
	EdgeTypeDependsOn  EdgeType = "depends_on"
	EdgeTypeContains   EdgeType = "contains"
	EdgeTypeDocuments  EdgeType = "documents"
)

// ValidEdgeType reports whether t is a known edge type.
func ValidEdgeType(t EdgeType) bool {
	switch t {
	case EdgeTypeCalls, EdgeTypeImports, EdgeTypeImplements, EdgeTypeDependsOn, EdgeTypeContains, EdgeTypeDocuments:
		return true
	}
	return false
}

// Node is a unit of indexed content: a file, a chunk within a file, or a
// free-standing concept/fact anchor.
type Node struct {
	ID          string
	ProjectID   string
	Name        string
	NodeType    NodeType
	FilePath    string // empty if not file-backed
	StartLine   int    // 0 if not set
	EndLine     int    // 0 if not set
	Summary     string
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasLineRange reports whether the node carries a 1-based inclusive line span.
func (n Node) HasLineRange() bool {
	return n.StartLine > 0 && n.EndLine > 0
}

// Edge is a directed, typed relation between two nodes.
type Edge struct {
	ID        string
	ProjectID string
	SourceID  string
	TargetID  string
	EdgeType  EdgeType
	Weight    float64
}

// FactType enumerates the kinds of temporal facts the project can record.
type FactType string

const (
	FactTypeArchitecture FactType = "architecture"
	FactTypeAPIContract  FactType = "api_contract"
	FactTypeDecision     FactType = "decision"
	FactTypeErrorPattern FactType = "error_pattern"
	FactTypeConstraint   FactType = "constraint"
	FactTypeLearning     FactType = "learning"
)

// ValidFactType reports whether t is a known fact type.
func ValidFactType(t FactType) bool {
	switch t {
	case FactTypeArchitecture, FactTypeAPIContract, FactTypeDecision,
		FactTypeErrorPattern, FactTypeConstraint, FactTypeLearning:
		return true
	}
	return false
}

// Fact is an append-only, dated, typed statement about the project.
type Fact struct {
	ID           string
	ProjectID    string
	NodeID       string // empty if not attached to a node
	FactType     FactType
	Content      string
	ValidFrom    time.Time
	ValidTo      *time.Time // nil while active
	SupersededBy string     // empty if not superseded
	SourceRef    string
}

// Active reports whether the fact has not been invalidated.
func (f Fact) Active() bool {
	return f.ValidTo == nil
}

// AccountingRow is a single per-query token-accounting record.
type AccountingRow struct {
	ID                  int64
	ProjectID           string
	SessionID           string
	QueryText           string
	PointerTokens       int
	FetchedTokens       int
	TraditionalEstimate int
	CreatedAt           time.Time
}
