package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const transcriptKeyPrefix = "transcript:"

type transcriptRedisRepo struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewTranscriptRedisRepo(redisClient *redis.Client, ttl time.Duration) summaries.RedisRepository {
	return &transcriptRedisRepo{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (r *transcriptRedisRepo) GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error) {
	data, err := r.redisClient.Get(ctx, transcriptKeyPrefix+videoID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrap(err, "transcriptRedisRepo.GetTranscript")
	}
	transcript := &models.Transcript{}
	if err = json.Unmarshal(data, transcript); err != nil {
		return nil, errors.Wrap(err, "transcriptRedisRepo.GetTranscript.Unmarshal")
	}
	return transcript, nil
}

func (r *transcriptRedisRepo) SetTranscript(ctx context.Context, videoID string, transcript *models.Transcript) error {
	data, err := json.Marshal(transcript)
	if err != nil {
		return errors.Wrap(err, "transcriptRedisRepo.SetTranscript.Marshal")
	}
	if err = r.redisClient.Set(ctx, transcriptKeyPrefix+videoID, data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "transcriptRedisRepo.SetTranscript")
	}
	return nil
}
