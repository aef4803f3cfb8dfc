package httpkit

import (
	"compress/flate"
	"time"

	"bulkscan/internal/platform/net/middleware"
)

// CommonStack is the baseline chain for every API route. There is no request
// timeout: a bulk run is synchronous and lasts as long as the scan
func CommonStack(cors middleware.CORSOptions) chain {
	return chain{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 30 * time.Second}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(cors),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
	}
}
