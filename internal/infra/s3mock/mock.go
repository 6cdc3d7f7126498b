package s3mock

import (
	"context"

	"github.com/humanbelnik/singalong/core/internal/model"
)

type RecordingArchive struct{}

func New() *RecordingArchive {
	return &RecordingArchive{}
}

func (s *RecordingArchive) Save(ctx context.Context, slot model.TurnSlot, rec model.Recording) (string, error) {
	return "", nil
}
