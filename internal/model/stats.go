// internal/model/stats.go
package model

import (
	"encoding/json"
	"strconv"
)

// Rate is a percentage rendered with one decimal ("50.0"). The zero Rate is
// written as the number 0, which is what an empty record set reports.
type Rate string

func (r Rate) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("0"), nil
	}
	return json.Marshal(string(r))
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Rate(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f == 0 {
		*r = ""
		return nil
	}
	*r = Rate(strconv.FormatFloat(f, 'f', 1, 64))
	return nil
}

// Float returns the numeric value of the rate.
func (r Rate) Float() float64 {
	if r == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(string(r), 64)
	return f
}

// Stats are population-level metrics over the full record set. Sent counts
// records whose stored status is exactly "sent", not every record.
type Stats struct {
	Total          int  `json:"total"`
	Sent           int  `json:"sent"`
	Opened         int  `json:"opened"`
	Replied        int  `json:"replied"`
	FollowedUp     int  `json:"followed_up"`
	OpenRate       Rate `json:"openRate"`
	ReplyRate      Rate `json:"replyRate"`
	FollowedUpRate Rate `json:"followedUpRate"`
}
