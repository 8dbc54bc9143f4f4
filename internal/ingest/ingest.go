// Package ingest orchestrates crawling, chunking, and writing a project's
// files into the knowledge graph: skip-unchanged via content hashes, a
// bounded-parallel chunk+write stage, and stale-node cleanup for files that
// have disappeared from the crawl since the last run. It corresponds to C6
// in the design.
package ingest

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hermes-project/hermes/internal/chunk"
	"github.com/hermes-project/hermes/internal/crawl"
	"github.com/hermes-project/hermes/internal/graph"
	"github.com/hermes-project/hermes/internal/store"
)

// Report summarizes one ingestion run.
type Report struct {
	TotalFiles   int
	Indexed      int
	Skipped      int
	Errors       int
	NodesCreated int
}

// Pipeline ingests a project directory into a Graph, using ht to skip
// unchanged files and chunks across runs.
type Pipeline struct {
	graph *graph.Graph
	ht    *store.HashTracker
	log   *slog.Logger
}

// New returns a Pipeline bound to g, tracking hashes via ht.
func New(g *graph.Graph, ht *store.HashTracker, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{graph: g, ht: ht, log: log}
}

// Directory crawls root, ingests every changed file (in parallel, bounded
// to the host's CPU count), then removes nodes for any file that has
// disappeared since the previous run.
func (p *Pipeline) Directory(ctx context.Context, root string) (Report, error) {
	files, err := crawl.Dir(root)
	if err != nil {
		return Report{}, err
	}

	report := Report{TotalFiles: len(files)}
	crawled := make(map[string]struct{}, len(files))

	var toIngest []string
	for _, path := range files {
		crawled[path] = struct{}{}
		unchanged, hashErr := p.fileUnchanged(path)
		if hashErr != nil {
			return Report{}, hashErr
		}
		if unchanged {
			report.Skipped++
			continue
		}
		toIngest = append(toIngest, path)
	}

	results := make([]ingestOutcome, len(toIngest))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, runtime.NumCPU()))
	for i, path := range toIngest {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			created, fileHash, ingestErr := p.File(path)
			results[i] = ingestOutcome{path: path, created: created, fileHash: fileHash, err: ingestErr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	for _, r := range results {
		if r.err != nil {
			p.log.Warn("failed to ingest file", "path", r.path, "error", r.err)
			report.Errors++
			continue
		}
		report.Indexed++
		report.NodesCreated += r.created
		if err := p.ht.UpdateHash(r.path, r.fileHash); err != nil {
			return Report{}, err
		}
	}

	if err := p.cleanupStale(crawled); err != nil {
		return Report{}, err
	}
	return report, nil
}

type ingestOutcome struct {
	path     string
	fileHash string
	created  int
	err      error
}

func (p *Pipeline) fileUnchanged(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, nil
	}
	return p.ht.IsUnchanged(path, store.ComputeHash(decodeLossy(raw)))
}

// File reads, chunks, and writes one file's nodes and edges into the
// graph, skipping chunks whose content hash is unchanged. It returns the
// number of nodes created (including the file node itself) and does not
// update the file-level hash — Directory does that for each file whose
// ingest succeeded, after every file has been processed.
func (p *Pipeline) File(path string) (created int, fileHash string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, "", err
	}
	content := decodeLossy(raw)
	chunks := chunk.File(path, content)

	fileHash = store.ComputeHash(content)
	fileNode := store.Node{
		ID:          graph.NewID(),
		Name:        path,
		NodeType:    store.NodeTypeFile,
		FilePath:    path,
		StartLine:   1,
		EndLine:     lineCount(content),
		ContentHash: fileHash,
	}
	fileNode.CreatedAt = now()
	fileNode.UpdatedAt = fileNode.CreatedAt

	if err := p.graph.AddNode(fileNode); err != nil {
		return 0, "", err
	}
	if err := p.graph.IndexFTS(fileNode, content); err != nil {
		return 0, "", err
	}

	created = 1
	for _, c := range chunks {
		chunkKey := store.ChunkKey(path, c.Name)
		chunkHash := store.ComputeHash(c.Content)

		unchanged, err := p.ht.IsChunkUnchanged(chunkKey, chunkHash)
		if err != nil {
			return created, fileHash, err
		}
		if unchanged {
			continue
		}

		chunkNode := store.Node{
			ID:        graph.NewID(),
			Name:      c.Name,
			NodeType:  c.NodeType,
			FilePath:  path,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
			Summary:   c.Summary,
		}
		chunkNode.CreatedAt = now()
		chunkNode.UpdatedAt = chunkNode.CreatedAt

		if err := p.graph.AddNode(chunkNode); err != nil {
			return created, fileHash, err
		}
		if err := p.graph.IndexFTS(chunkNode, c.Content); err != nil {
			return created, fileHash, err
		}
		if err := p.graph.AddEdge(store.Edge{
			ID:       graph.NewID(),
			SourceID: fileNode.ID,
			TargetID: chunkNode.ID,
			EdgeType: store.EdgeTypeContains,
			Weight:   1.0,
		}); err != nil {
			return created, fileHash, err
		}
		if err := p.ht.UpdateChunkHash(chunkKey, chunkHash); err != nil {
			return created, fileHash, err
		}
		created++
	}

	return created, fileHash, nil
}

func (p *Pipeline) cleanupStale(crawled map[string]struct{}) error {
	known, err := p.graph.GetAllFilePaths()
	if err != nil {
		return err
	}
	for path := range known {
		if _, ok := crawled[path]; ok {
			continue
		}
		if err := p.graph.DeleteNodesForFile(path); err != nil {
			return err
		}
		p.log.Info("removed stale nodes for deleted file", "path", path)
	}
	return nil
}
