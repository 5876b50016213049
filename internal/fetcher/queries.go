package fetcher

import "encoding/json"

const transfersPageQuery = `
  query TransfersPage($from: DateTime!, $to: DateTime!, $first: Int!, $after: String) {
    transfersConnection(
      where: { timestamp_gte: $from, timestamp_lt: $to }
      orderBy: timestamp_ASC
      first: $first
      after: $after
    ) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          from { id }
          to { id }
        }
      }
    }
  }
`

const extrinsicsCountQuery = `
  query ExtrinsicsCount($from: DateTime!, $to: DateTime!) {
    extrinsicsConnection(
      where: { timestamp_gte: $from, timestamp_lt: $to }
      orderBy: timestamp_ASC
    ) {
      totalCount
    }
  }
`

type account struct {
	ID json.RawMessage `json:"id"`
}

// id returns the account id, or false when it is missing or not a string.
func (a *account) id() (string, bool) {
	if a == nil || len(a.ID) == 0 || string(a.ID) == "null" {
		return "", false
	}
	var id string
	if err := json.Unmarshal(a.ID, &id); err != nil {
		return "", false
	}
	return id, true
}

type transfersPage struct {
	TransfersConnection *struct {
		PageInfo *struct {
			HasNextPage bool    `json:"hasNextPage"`
			EndCursor   *string `json:"endCursor"`
		} `json:"pageInfo"`
		Edges *[]struct {
			Node *struct {
				From *account `json:"from"`
				To   *account `json:"to"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"transfersConnection"`
}

type extrinsicsCount struct {
	ExtrinsicsConnection *struct {
		TotalCount *uint64 `json:"totalCount"`
	} `json:"extrinsicsConnection"`
}
