package content

import (
	"encoding/json"
	"fmt"
)

// Amount is a quantity of one resource. It is written as a two element
// array, [quantity, resourceId], in content files and saves.
type Amount struct {
	Qty float64
	ID  string
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Qty, a.ID})
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("amount: want [quantity, id], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &a.Qty); err != nil {
		return fmt.Errorf("amount quantity: %w", err)
	}
	if err := json.Unmarshal(raw[1], &a.ID); err != nil {
		return fmt.Errorf("amount id: %w", err)
	}
	return nil
}

// Grant is the payload of the give topic.
type Grant struct {
	Amounts   []Amount `json:"give"`
	Initiator string   `json:"initiator,omitempty"`
}

func Scale(list []Amount, factor float64) []Amount {
	out := make([]Amount, 0, len(list))
	for _, a := range list {
		out = append(out, Amount{Qty: a.Qty * factor, ID: a.ID})
	}
	return out
}

// Sum folds duplicate ids, keeping first-seen order.
func Sum(list []Amount) []Amount {
	idx := map[string]int{}
	var out []Amount
	for _, a := range list {
		if i, ok := idx[a.ID]; ok {
			out[i].Qty += a.Qty
			continue
		}
		idx[a.ID] = len(out)
		out = append(out, a)
	}
	return out
}
