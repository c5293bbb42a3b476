package metrics

import (
	"net/http/pprof"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var namedProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// GetHandler mounts the Prometheus scrape endpoint and pprof under router.
func GetHandler(router *gin.RouterGroup, m Manager) {
	router.GET("/metrics", systemMetricsMiddleware(m), gin.WrapH(promhttp.Handler()))

	pprofGroup := router.Group("/debug/pprof")
	{
		pprofGroup.GET("/", gin.WrapF(pprof.Index))
		pprofGroup.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofGroup.GET("/profile", gin.WrapF(pprof.Profile))
		pprofGroup.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofGroup.GET("/trace", gin.WrapF(pprof.Trace))
		for _, name := range namedProfiles {
			pprofGroup.GET("/"+name, gin.WrapH(pprof.Handler(name)))
		}
	}
}

// RequestMetrics counts requests and records their latency by route template.
func RequestMetrics(m Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())

		m.IncrementCounter(ctx.Request.Context(), HTTPRequests,
			"method", ctx.Request.Method, "path", path, "status", status)
		m.RecordHistogram(ctx.Request.Context(), HTTPRequestDuration, time.Since(start).Seconds(),
			"method", ctx.Request.Method, "path", path)
	}
}

func systemMetricsMiddleware(m Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		m.SetGauge("app_go_routines", float64(runtime.NumGoroutine()))
		m.SetGauge("app_sys_memory_alloc", float64(stats.Alloc))
		m.SetGauge("app_sys_total_alloc", float64(stats.TotalAlloc))
		m.SetGauge("app_go_numGC", float64(stats.NumGC))
		m.SetGauge("app_go_sys", float64(stats.Sys))

		ctx.Next()
	}
}
