// Package export renders catalog snapshots into immutable artifacts stored in
// a blob backend, with an audit trail per export.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rackcatalog/internal/blob"
	"rackcatalog/pkg/catalog"
)

// Format identifies an export rendering.
type Format string

const (
	FormatJSON Format = "json" // full catalog document, indent-pretty
	FormatCSV  Format = "csv"  // flat product table
)

// Status describes the outcome of an export request.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact captures a stored snapshot artifact.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks an export request and resulting artifacts.
type Record struct {
	ID          string     `json:"id"`
	Formats     []Format   `json:"formats"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Request is an export invocation.
type Request struct {
	Formats     []Format
	RequestedBy string
	Reason      string
}

// AuditEntry captures audit trail metadata for exports.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor,omitempty"`
	Status     Status    `json:"status"`
	Artifacts  []string  `json:"artifacts,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MemoryAuditLog retains audit entries in memory, oldest first.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func NewMemoryAuditLog() *MemoryAuditLog { return &MemoryAuditLog{} }

func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of all recorded entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Snapshotter supplies the catalog state to export. *store.Store satisfies it.
type Snapshotter interface {
	Read() catalog.State
}

// Exporter renders catalog snapshots into blob artifacts.
type Exporter struct {
	source Snapshotter
	store  blob.Store
	audit  AuditLogger
	now    func() time.Time
	newID  func() string
}

// NewExporter constructs an Exporter. audit may be nil.
func NewExporter(source Snapshotter, store blob.Store, audit AuditLogger) *Exporter {
	return &Exporter{
		source: source,
		store:  store,
		audit:  audit,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Export renders the current catalog state in each requested format and stores
// the results as immutable blobs. A failed render or store fails the whole
// request; earlier artifacts from the same request are left in place.
func (e *Exporter) Export(ctx context.Context, req Request) (Record, error) {
	if e.source == nil {
		return Record{}, fmt.Errorf("export source not configured")
	}
	if e.store == nil {
		return Record{}, fmt.Errorf("export blob store not configured")
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{})
	for _, f := range formats {
		if _, dup := seen[f]; dup {
			continue
		}
		if f != FormatJSON && f != FormatCSV {
			return Record{}, fmt.Errorf("unsupported export format %q", f)
		}
		uniq = append(uniq, f)
		seen[f] = struct{}{}
	}

	now := e.now()
	record := Record{
		ID:          e.newID(),
		Formats:     uniq,
		Status:      StatusSucceeded,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
		CreatedAt:   now,
	}

	state := e.source.Read()
	stamp := now.Format("20060102T150405Z")
	for _, format := range uniq {
		payload, contentType, err := render(state, format)
		if err != nil {
			return e.fail(ctx, record, fmt.Errorf("render %s: %w", format, err))
		}
		key := fmt.Sprintf("snapshots/%s-%s.%s", stamp, record.ID, format)
		info, err := e.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"export-id": record.ID, "format": string(format)},
		})
		if err != nil {
			return e.fail(ctx, record, fmt.Errorf("store %s artifact: %w", format, err))
		}
		record.Artifacts = append(record.Artifacts, Artifact{
			Key:         info.Key,
			Format:      format,
			ContentType: contentType,
			SizeBytes:   info.Size,
			URL:         info.URL,
			CreatedAt:   now,
		})
	}

	e.record(ctx, record, "")
	return record, nil
}

func (e *Exporter) fail(ctx context.Context, record Record, err error) (Record, error) {
	record.Status = StatusFailed
	record.Error = err.Error()
	e.record(ctx, record, err.Error())
	return record, err
}

func (e *Exporter) record(ctx context.Context, record Record, reason string) {
	if e.audit == nil {
		return
	}
	keys := make([]string, 0, len(record.Artifacts))
	for _, a := range record.Artifacts {
		keys = append(keys, a.Key)
	}
	if reason == "" {
		reason = record.Reason
	}
	e.audit.Record(ctx, AuditEntry{
		ID:         e.newID(),
		Action:     "catalog_export",
		Actor:      record.RequestedBy,
		Status:     record.Status,
		Artifacts:  keys,
		Reason:     reason,
		OccurredAt: e.now(),
	})
}

func render(state catalog.State, format Format) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return payload, "application/json", nil
	case FormatCSV:
		return renderCSV(state)
	default:
		return nil, "", fmt.Errorf("unknown format %q", format)
	}
}

// renderCSV flattens the product list into one row per product. Multi-valued
// columns are pipe-joined.
func renderCSV(state catalog.State) ([]byte, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "name", "category", "make", "model", "typeTags", "w", "h", "l", "weight", "rackU", "updatedAt"}
	if err := w.Write(header); err != nil {
		return nil, "", err
	}
	products := make([]catalog.Product, len(state.Products))
	copy(products, state.Products)
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	for _, p := range products {
		rackU := ""
		if p.RackU != nil {
			rackU = strconv.Itoa(*p.RackU)
		}
		row := []string{
			p.ID,
			p.Name,
			p.Category,
			p.Make,
			p.Model,
			strings.Join(p.TypeTags, "|"),
			formatFloat(p.Dims.W),
			formatFloat(p.Dims.H),
			formatFloat(p.Dims.L),
			formatFloat(p.Weight),
			rackU,
			strconv.FormatInt(p.UpdatedAt, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "text/csv", nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
