package usecase

import (
	"errors"
	"fmt"
)

// Pipeline bosqichlari
const (
	StageAcquire = "acquire"
	StageParse   = "parse"
	StageRender  = "render"
	StageWrite   = "write"
)

var (
	// ErrEmptyCatalog prays-listda bitta ham yaroqli mahsulot yo'q
	ErrEmptyCatalog = errors.New("price list contains no offers")
	// ErrRunInProgress boshqa generatsiya hali tugamagan
	ErrRunInProgress = errors.New("generation already in progress")
	// ErrCatalogNotReady birinchi generatsiya hali bo'lmagan
	ErrCatalogNotReady = errors.New("catalog is not generated yet")
)

// StageError pipeline bosqichidagi to'xtatuvchi xato
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError yangi StageError
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
