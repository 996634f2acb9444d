package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// PostgresReportStore persists report records in the compliance_reports
// table. The full report is stored as a JSONB column next to the columns
// the list and quota queries need.
type PostgresReportStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ReportStore = (*PostgresReportStore)(nil)

func NewPostgresReportStore(dsn string) (*PostgresReportStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	slog.Info("report store initialized", "driver", "postgres")
	return &PostgresReportStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

func (s *PostgresReportStore) Close() error {
	return s.db.Close()
}

func (s *PostgresReportStore) saveQuery(rec *model.ReportRecord, reportJSON []byte) sq.InsertBuilder {
	return s.sb.Insert("compliance_reports").
		Columns("id", "client_id", "site_url", "company_name", "score", "status", "report", "created_at").
		Values(rec.ID, rec.ClientID, rec.SiteURL, rec.CompanyName, rec.Score, string(rec.Status), reportJSON, rec.CreatedAt)
}

func (s *PostgresReportStore) Save(ctx context.Context, rec *model.ReportRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	query, args, err := s.saveQuery(rec, reportJSON).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *PostgresReportStore) getQuery(id string) sq.SelectBuilder {
	return s.sb.Select("id", "client_id", "site_url", "company_name", "score", "status", "report", "created_at").
		From("compliance_reports").
		Where(sq.Eq{"id": id})
}

func (s *PostgresReportStore) Get(ctx context.Context, id string) (*model.ReportRecord, error) {
	query, args, err := s.getQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	return rec, nil
}

func (s *PostgresReportStore) listQuery(clientID string) sq.SelectBuilder {
	return s.sb.Select("id", "client_id", "site_url", "company_name", "score", "status", "report", "created_at").
		From("compliance_reports").
		Where(sq.Eq{"client_id": clientID}).
		OrderBy("created_at DESC")
}

func (s *PostgresReportStore) ListByClient(ctx context.Context, clientID string) ([]*model.ReportRecord, error) {
	query, args, err := s.listQuery(clientID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var result []*model.ReportRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

func (s *PostgresReportStore) countSinceQuery(clientID string, since time.Time) sq.SelectBuilder {
	return s.sb.Select("COUNT(*)").
		From("compliance_reports").
		Where(sq.Eq{"client_id": clientID}).
		Where(sq.GtOrEq{"created_at": since})
}

func (s *PostgresReportStore) CountSince(ctx context.Context, clientID string, since time.Time) (int, error) {
	query, args, err := s.countSinceQuery(clientID, since).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}

func (s *PostgresReportStore) Delete(ctx context.Context, id string) error {
	query, args, err := s.sb.Delete("compliance_reports").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (s *PostgresReportStore) Count(ctx context.Context) (int, error) {
	query, args, err := s.sb.Select("COUNT(*)").From("compliance_reports").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.ReportRecord, error) {
	var rec model.ReportRecord
	var status string
	var reportJSON []byte

	if err := row.Scan(&rec.ID, &rec.ClientID, &rec.SiteURL, &rec.CompanyName,
		&rec.Score, &status, &reportJSON, &rec.CreatedAt); err != nil {
		return nil, err
	}

	rec.Status = model.ComplianceStatus(status)
	if len(reportJSON) > 0 {
		if err := json.Unmarshal(reportJSON, &rec.Report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
	}
	return &rec, nil
}
