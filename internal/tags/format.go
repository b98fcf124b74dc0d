package tags

import (
	"math"
	"strconv"
	"time"
)

// FormatLength renders d as MM:SS, rounding to the nearest second.
// Minutes are not wrapped into hours.
func FormatLength(d time.Duration) string {
	secs := max(int(math.Round(d.Seconds())), 0)
	m, s := secs/60, secs%60
	return pad2(m) + ":" + pad2(s)
}

// FormatBitrate renders a kbit/s value as "NNNkbs". Returns "" for unknown.
func FormatBitrate(kbps int) string {
	if kbps <= 0 {
		return ""
	}
	return strconv.Itoa(kbps) + "kbs"
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
