package repository

import (
	"context"

	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type runRepo struct {
	db *sqlx.DB
}

func NewRunRepo(db *sqlx.DB) summaries.Repository {
	return &runRepo{db: db}
}

func (r *runRepo) CreateRun(ctx context.Context, record *models.RunRecord) error {
	created := &models.RunRecord{}
	if err := r.db.QueryRowxContext(
		ctx,
		createRunQuery,
		record.RecordID,
		record.RunID,
		record.URL,
		record.VideoID,
	).StructScan(created); err != nil {
		return errors.Wrap(err, "runRepo.CreateRun")
	}
	record.CreatedAt = created.CreatedAt
	record.UpdatedAt = created.UpdatedAt
	return nil
}

func (r *runRepo) UpdateTranscript(ctx context.Context, record *models.RunRecord) error {
	if _, err := r.db.ExecContext(
		ctx,
		updateTranscriptQuery,
		record.RecordID,
		record.Transcript,
		record.Lang,
	); err != nil {
		return errors.Wrap(err, "runRepo.UpdateTranscript")
	}
	return nil
}

func (r *runRepo) UpdateSummaries(ctx context.Context, record *models.RunRecord) error {
	if _, err := r.db.ExecContext(
		ctx,
		updateSummariesQuery,
		record.RecordID,
		record.CleanText,
		record.FullSummary,
		record.MiddleSummary,
		record.ShortSummary,
		record.Resources,
	); err != nil {
		return errors.Wrap(err, "runRepo.UpdateSummaries")
	}
	return nil
}

func (r *runRepo) GetRunByID(ctx context.Context, runID int64) (*models.RunRecord, error) {
	record := &models.RunRecord{}
	if err := r.db.QueryRowxContext(ctx, getRunByIDQuery, runID).StructScan(record); err != nil {
		return nil, errors.Wrap(err, "runRepo.GetRunByID")
	}
	return record, nil
}
