package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	appctx "aquaplant/internal/core/context"
	"aquaplant/internal/core/id"
	"aquaplant/internal/domain/stock"
)

const auditTable = "sys_audit"

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditRecord is a row of sys_audit.
type AuditRecord struct {
	ID                id.ID           `db:"id"`
	Action            string          `db:"action"`
	ProductID         *id.ID          `db:"product_id"`
	ProductSN         string          `db:"product_sn"`
	Quantity          int64           `db:"quantity"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	RequestID         string          `db:"request_id"`
	CreatedAt         time.Time       `db:"created_at"`
}

var auditColumns = ExtractDBColumns[AuditRecord]()

// Journal writes ledger movements to sys_audit inside the caller's
// transaction. Change sets above the threshold are stored zstd-compressed.
type Journal struct {
	txManager         *TxManager
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var (
	_ stock.Journal       = (*Journal)(nil)
	_ stock.JournalReader = (*Journal)(nil)
)

// NewJournal creates a journal. Change sets larger than 10KB are compressed.
func NewJournal(txManager *TxManager) (*Journal, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Journal{
		txManager:         txManager,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record implements stock.Journal.
func (j *Journal) Record(ctx context.Context, entry stock.JournalEntry) error {
	rec, err := j.encode(entry)
	if err != nil {
		return err
	}
	rec.RequestID = appctx.GetRequestID(ctx)

	sql, args, err := j.builder.Insert(auditTable).
		SetMap(StructToMap(rec)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := j.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History implements stock.JournalReader.
func (j *Journal) History(ctx context.Context, productSN string, limit int) ([]stock.JournalEntry, error) {
	q := j.builder.Select(auditColumns...).
		From(auditTable).
		OrderBy("created_at DESC", "id DESC")
	if productSN != "" {
		q = q.Where(squirrel.Eq{"product_sn": productSN})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var records []AuditRecord
	if err := pgxscan.Select(ctx, j.txManager.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}

	entries := make([]stock.JournalEntry, 0, len(records))
	for i := range records {
		e, err := j.decode(&records[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Prune deletes journal entries recorded before the cutoff.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	sql, args, err := j.pruneQuery(before).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build prune query: %w", err)
	}
	tag, err := j.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (j *Journal) pruneQuery(before time.Time) squirrel.DeleteBuilder {
	return j.builder.Delete(auditTable).Where(squirrel.Lt{"created_at": before.UTC()})
}

func (j *Journal) encode(entry stock.JournalEntry) (*AuditRecord, error) {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return nil, fmt.Errorf("marshal changes: %w", err)
	}

	rec := &AuditRecord{
		ID:              entry.ID,
		Action:          entry.Action,
		ProductSN:       entry.ProductSN,
		Quantity:        entry.Quantity,
		Changes:         changes,
		CompressionAlgo: CompressionNone,
		CreatedAt:       entry.At.UTC(),
	}
	if id.IsNil(rec.ID) {
		rec.ID = id.New()
	}
	if entry.At.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if !id.IsNil(entry.ProductID) {
		pid := entry.ProductID
		rec.ProductID = &pid
	}

	if len(changes) > j.compressThreshold {
		rec.ChangesCompressed = j.encoder.EncodeAll(changes, nil)
		rec.Changes = nil
		rec.CompressionAlgo = CompressionZstd
	}
	return rec, nil
}

func (j *Journal) decode(rec *AuditRecord) (stock.JournalEntry, error) {
	raw := rec.Changes
	if rec.CompressionAlgo == CompressionZstd && len(rec.ChangesCompressed) > 0 {
		decompressed, err := j.decoder.DecodeAll(rec.ChangesCompressed, nil)
		if err != nil {
			return stock.JournalEntry{}, fmt.Errorf("decompress changes: %w", err)
		}
		raw = decompressed
	}

	e := stock.JournalEntry{
		ID:        rec.ID,
		Action:    rec.Action,
		ProductSN: rec.ProductSN,
		Quantity:  rec.Quantity,
		At:        rec.CreatedAt,
	}
	if rec.ProductID != nil {
		e.ProductID = *rec.ProductID
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.Changes); err != nil {
			return stock.JournalEntry{}, fmt.Errorf("unmarshal changes: %w", err)
		}
	}
	return e, nil
}
