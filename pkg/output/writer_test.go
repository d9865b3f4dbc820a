package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, line []byte) Record {
	t.Helper()
	var rec Record
	require.NoError(t, json.Unmarshal(line, &rec))
	return rec
}

func TestJSONLWriterEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-123", "s3")

	created := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	err := w.WriteDelete(context.Background(), &DeleteRecord{
		Bucket:      "tmp-reports",
		Key:         "fresh/report.csv",
		Size:        2048,
		TimeCreated: created,
	})
	require.NoError(t, err)

	rec := decodeRecord(t, buf.Bytes())
	assert.Equal(t, TypeDelete, rec.Type)
	assert.Equal(t, "job-123", rec.JobID)
	assert.Equal(t, "s3", rec.Client)
	assert.False(t, rec.TS.IsZero())

	var del DeleteRecord
	require.NoError(t, json.Unmarshal(rec.Data, &del))
	assert.Equal(t, "tmp-reports", del.Bucket)
	assert.Equal(t, "fresh/report.csv", del.Key)
	assert.Equal(t, int64(2048), del.Size)
	assert.True(t, created.Equal(del.TimeCreated))
}

func TestJSONLWriterOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-123", "file")
	ctx := context.Background()

	require.NoError(t, w.WriteDelete(ctx, &DeleteRecord{Bucket: "a", Key: "x"}))
	require.NoError(t, w.WriteError(ctx, &ErrorRecord{Code: ErrCodeAccessDenied, Message: "denied"}))
	require.NoError(t, w.WriteSummary(ctx, &SummaryRecord{Policy: "max_age"}))

	scanner := bufio.NewScanner(&buf)
	var types []string
	for scanner.Scan() {
		types = append(types, decodeRecord(t, scanner.Bytes()).Type)
	}
	assert.Equal(t, []string{TypeDelete, TypeError, TypeSummary}, types)
}

func TestJSONLWriterClosed(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-123", "s3")
	require.NoError(t, w.Close())

	err := w.WriteDelete(context.Background(), &DeleteRecord{Bucket: "a", Key: "x"})
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestJSONLWriterCancelledContext(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-123", "s3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteDelete(ctx, &DeleteRecord{Bucket: "a", Key: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestJSONLWriterConcurrentLinesIntact(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-123", "s3")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = w.WriteDelete(ctx, &DeleteRecord{Bucket: "b", Key: "concurrent-key"})
			}
		}()
	}
	wg.Wait()

	scanner := bufio.NewScanner(&buf)
	count := 0
	for scanner.Scan() {
		rec := decodeRecord(t, scanner.Bytes())
		assert.Equal(t, TypeDelete, rec.Type)
		count++
	}
	assert.Equal(t, 200, count)
}

// shortWriter writes one byte at a time to exercise short-write handling.
type shortWriter struct {
	buf bytes.Buffer
}

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return s.buf.Write(p[:1])
}

func TestJSONLWriterShortWrites(t *testing.T) {
	sw := &shortWriter{}
	w := NewJSONLWriter(sw, "job-123", "s3")

	require.NoError(t, w.WriteProgress(context.Background(), &ProgressRecord{Phase: PhaseStarting}))

	rec := decodeRecord(t, bytes.TrimSuffix(sw.buf.Bytes(), []byte("\n")))
	assert.Equal(t, TypeProgress, rec.Type)
}
