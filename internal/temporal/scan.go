package temporal

import (
	"database/sql"
	"time"

	"github.com/hermes-project/hermes/internal/herrors"
	"github.com/hermes-project/hermes/internal/store"
)

func scanFacts(rows *sql.Rows) ([]store.Fact, error) {
	var out []store.Fact
	for rows.Next() {
		var f store.Fact
		var factType, validFrom string
		var nodeID, validTo, supersededBy, sourceRef sql.NullString
		if err := rows.Scan(&f.ID, &f.ProjectID, &nodeID, &factType, &f.Content, &validFrom, &validTo, &supersededBy, &sourceRef); err != nil {
			return nil, herrors.StorageError("scan temporal fact", err)
		}
		f.FactType = store.FactType(factType)
		f.NodeID = nodeID.String
		f.SupersededBy = supersededBy.String
		f.SourceRef = sourceRef.String
		if t, err := time.Parse(time.RFC3339Nano, validFrom); err == nil {
			f.ValidFrom = t
		}
		if validTo.Valid {
			if t, err := time.Parse(time.RFC3339Nano, validTo.String); err == nil {
				f.ValidTo = &t
			}
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
