package framemsg

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"
)

// TimeZone formats a UTC offset in seconds as "±H:MM" with the minutes
// rounded to the nearest quarter hour.
func TimeZone(offsetSeconds int) string {
	sign := '+'
	if offsetSeconds < 0 {
		sign = '-'
		offsetSeconds = -offsetSeconds
	}
	hours := offsetSeconds / 3600
	minutes := int(math.Round(float64(offsetSeconds%3600)/60/15)) * 15
	if minutes == 60 {
		hours++
		minutes = 0
	}
	return fmt.Sprintf("%c%d:%02d", sign, hours, minutes)
}

// TimePayload returns the time sync payload for t: the UTC epoch seconds as
// decimal text, a newline, and the time zone of t's location.
func TimePayload(t time.Time) []byte {
	_, offset := t.Zone()
	epoch := float64(t.UnixMicro()) / 1e6
	return []byte(strconv.FormatFloat(epoch, 'f', -1, 64) + "\n" + TimeZone(offset))
}

// SyncTime sends the current local time to the device as message type t.
func SyncTime(ctx context.Context, s MessageSender, t MsgType) error {
	return s.SendMessage(ctx, t, TimePayload(time.Now()))
}
