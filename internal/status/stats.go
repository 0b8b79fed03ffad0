package status

import (
	"math"
	"strconv"

	"github.com/unclebandit/coldmail-tracker/internal/model"
)

// ComputeStats aggregates over the full record set. Sent counts the stored
// status field, the other counts read the signals directly.
func ComputeStats(emails []model.Email) model.Stats {
	st := model.Stats{Total: len(emails)}
	for _, e := range emails {
		if e.Status == model.StatusSent {
			st.Sent++
		}
		if e.Opened {
			st.Opened++
		}
		if e.Replied {
			st.Replied++
		}
		if e.FollowedUp {
			st.FollowedUp++
		}
	}
	st.OpenRate = rate(st.Opened, st.Total)
	st.ReplyRate = rate(st.Replied, st.Total)
	st.FollowedUpRate = rate(st.FollowedUp, st.Total)
	return st
}

// rate rounds half up to one decimal, so 1/80 reports "1.3".
func rate(n, total int) model.Rate {
	if total == 0 {
		return ""
	}
	pct := float64(n) / float64(total) * 100
	return model.Rate(strconv.FormatFloat(math.Round(pct*10)/10, 'f', 1, 64))
}
