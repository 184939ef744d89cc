package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type transcriptAwsRepo struct {
	s3Client *s3.Client
	bucket   string
}

func NewTranscriptAwsRepo(s3Client *s3.Client, bucket string) summaries.AWSRepository {
	return &transcriptAwsRepo{
		s3Client: s3Client,
		bucket:   bucket,
	}
}

func (r *transcriptAwsRepo) ArchiveTranscript(ctx context.Context, videoID string, runID int64, content string) error {
	key := fmt.Sprintf("transcripts/%s/%d.txt", videoID, runID)
	_, err := r.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return errors.Wrap(err, "transcriptAwsRepo.ArchiveTranscript")
	}
	return nil
}
