package client

import (
	"context"

	"github.com/menta2k/image-cropper/pkg/types"
)

// VisionClient is the contract a vision-model backend must satisfy to be
// used as a crop-suggestion source.
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error)
}
