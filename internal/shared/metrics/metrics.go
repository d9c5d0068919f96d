package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	uploadSucceededTotal atomic.Uint64
	uploadFailedTotal    = newLabeledCounter("kind")

	chatRequestsTotal = newLabeledCounter("endpoint")
	chatFailedTotal   = newLabeledCounter("endpoint", "stage")

	pipelineDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncUploadSucceeded increments the successful upload counter.
func IncUploadSucceeded() {
	uploadSucceededTotal.Add(1)
}

// IncUploadFailed increments the failed upload counter for the given error kind.
func IncUploadFailed(kind string) {
	uploadFailedTotal.Inc(kind)
}

// IncChatRequest counts a request to a chat endpoint ("chat" or "audio_chat").
func IncChatRequest(endpoint string) {
	chatRequestsTotal.Inc(endpoint)
}

// IncChatFailed counts a pipeline failure by endpoint and stage.
func IncChatFailed(endpoint, stage string) {
	chatFailedTotal.Inc(endpoint, stage)
}

// ObservePipelineDurationMs records a reply pipeline duration in milliseconds.
func ObservePipelineDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	pipelineDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "upload_succeeded_total", "Total documents uploaded and extracted", uploadSucceededTotal.Load())
	writeLabeledCounter(&buf, "upload_failed_total", "Total failed uploads by kind", uploadFailedTotal)
	writeLabeledCounter(&buf, "chat_requests_total", "Total chat requests by endpoint", chatRequestsTotal)
	writeLabeledCounter(&buf, "chat_failed_total", "Total chat failures by endpoint and stage", chatFailedTotal)
	writeHistogram(&buf, "chat_pipeline_duration_ms", "Reply pipeline duration in milliseconds", pipelineDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	labels []string
	values map[string]uint64
	sets   map[string][]string
}

func newLabeledCounter(labels ...string) *labeledCounter {
	return &labeledCounter{
		labels: labels,
		values: make(map[string]uint64),
		sets:   make(map[string][]string),
	}
}

func (c *labeledCounter) Inc(values ...string) {
	key := fmt.Sprintf("%q", values)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sets[key]; !ok {
		c.sets[key] = append([]string(nil), values...)
	}
	c.values[key]++
}

type labeledSample struct {
	labels string
	value  uint64
}

func (c *labeledCounter) Snapshot() []labeledSample {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]labeledSample, 0, len(c.values))
	for key, value := range c.values {
		var lb bytes.Buffer
		for i, name := range c.labels {
			if i > 0 {
				lb.WriteByte(',')
			}
			v := ""
			if i < len(c.sets[key]) {
				v = c.sets[key][i]
			}
			fmt.Fprintf(&lb, "%s=%q", name, v)
		}
		out = append(out, labeledSample{labels: lb.String(), value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].labels < out[j].labels })
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket that holds it; counts are
// made cumulative when rendered.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help string, c *labeledCounter) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	for _, s := range c.Snapshot() {
		fmt.Fprintf(buf, "%s{%s} %d\n", name, s.labels, s.value)
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the milliseconds elapsed since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
