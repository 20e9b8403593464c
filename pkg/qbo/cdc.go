package qbo

import (
	"encoding/json"
	"fmt"
)

// cdcEnvelope mirrors the change data capture wire shape: a CDCResponse
// array with one element holding a QueryResponse block per entity type.
type cdcEnvelope struct {
	CDCResponse []struct {
		QueryResponse []map[string]json.RawMessage `json:"QueryResponse"`
	} `json:"CDCResponse"`
	Time string `json:"time"`
}

// UnmarshalCDCResponse decodes a change data capture body. Blocks come back
// in the order the entity names were requested; a block for a type with no
// changes decodes to an empty change set.
func UnmarshalCDCResponse(data []byte) (*CDCResponse, error) {
	var envelope cdcEnvelope

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("parsing cdc envelope: %w", err)
	}

	result := &CDCResponse{Time: envelope.Time}

	for _, outer := range envelope.CDCResponse {
		for _, block := range outer.QueryResponse {
			for key, value := range block {
				if responseKeysToSkip[key] || key == "startPosition" || key == "maxResults" || key == "totalCount" {
					continue
				}

				set := CDCChangeSet{EntityName: key}

				var rows []json.RawMessage

				err = json.Unmarshal(value, &rows)
				if err != nil {
					return nil, fmt.Errorf("parsing cdc %s rows: %w", key, err)
				}

				for _, row := range rows {
					var probe struct {
						ID     string `json:"Id"`
						Status string `json:"status"`
					}

					err = json.Unmarshal(row, &probe)
					if err != nil {
						return nil, fmt.Errorf("parsing cdc %s row: %w", key, err)
					}

					set.Entities = append(set.Entities, CDCEntity{
						ID:     probe.ID,
						Status: probe.Status,
						Raw:    row,
					})
				}

				result.Changes = append(result.Changes, set)
			}
		}
	}

	return result, nil
}
