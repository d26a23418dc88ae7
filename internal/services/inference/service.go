package inference

import (
	"context"
	"encoding/json"
	"strings"

	"mangatl/internal/config"
	"mangatl/internal/services"
	"mangatl/internal/services/remote"
)

// Endpoint suffixes on the image-analysis service.
const (
	PathDetectTextAreas = "/detect_text_areas"
	PathDetectPanels    = "/detect_panels"
	PathRecognizeBatch  = "/recognize_images_batch"
	PathInpaint         = "/inpaint"
	PathInpaintAutoText = "/inpaint_auto_text"
	PathInpaintLama     = "/inpaint_lama"
	PathInpaintManual   = "/inpaint_manual"
)

// Defaults applied when a request leaves an optional field unset.
type Defaults struct {
	OCREngine    string
	InpaintModel string
	Dilate       int
}

// DefaultsFromConfig reads request defaults from the services section.
func DefaultsFromConfig(cfg *config.Config) Defaults {
	if cfg == nil {
		return Defaults{OCREngine: "manga", InpaintModel: "lama_large_512px", Dilate: 2}
	}
	return Defaults{
		OCREngine:    cfg.Services.DefaultOCREngine,
		InpaintModel: cfg.Services.DefaultInpaintModel,
		Dilate:       cfg.Services.DefaultDilate,
	}
}

// Service issues image-analysis requests through the shared client.
type Service struct {
	client   *remote.Client
	defaults Defaults
}

// NewService constructs an image-analysis proxy.
func NewService(client *remote.Client, defaults Defaults) *Service {
	if strings.TrimSpace(defaults.OCREngine) == "" {
		defaults.OCREngine = "manga"
	}
	if strings.TrimSpace(defaults.InpaintModel) == "" {
		defaults.InpaintModel = "lama_large_512px"
	}
	return &Service{client: client, defaults: defaults}
}

// FetchModels GETs apiURL verbatim and returns the decoded listing.
func (s *Service) FetchModels(ctx context.Context, apiURL string) (any, error) {
	if err := requireURL(apiURL, "fetch models"); err != nil {
		return nil, err
	}
	return s.client.GetJSON(ctx, apiURL)
}

// DetectTextAreas locates speech-bubble text regions in one image.
func (s *Service) DetectTextAreas(ctx context.Context, apiURL, imageData string) (any, error) {
	return s.post(ctx, apiURL, PathDetectTextAreas, imageRequest{ImageData: imageData})
}

// DetectPanels locates comic panels in one image.
func (s *Service) DetectPanels(ctx context.Context, apiURL, imageData string) (any, error) {
	return s.post(ctx, apiURL, PathDetectPanels, imageRequest{ImageData: imageData})
}

// RecognizeRequest is the batch OCR input.
type RecognizeRequest struct {
	APIURL     string
	ImagesData []string
	Engine     *string
	Langs      []string
	AutoRotate *bool
}

type recognizeBody struct {
	ImagesData []string `json:"images_data"`
	Engine     string   `json:"engine"`
	Langs      []string `json:"langs"`
	AutoRotate bool     `json:"auto_rotate"`
}

// RecognizeBatch runs OCR over cropped regions. Engine defaults to the
// configured OCR engine, auto_rotate to true, and langs is sent as null when
// absent.
func (s *Service) RecognizeBatch(ctx context.Context, req RecognizeRequest) (any, error) {
	body := recognizeBody{
		ImagesData: req.ImagesData,
		Engine:     s.defaults.OCREngine,
		Langs:      req.Langs,
		AutoRotate: true,
	}
	if body.ImagesData == nil {
		body.ImagesData = []string{}
	}
	if req.Engine != nil {
		body.Engine = *req.Engine
	}
	if req.AutoRotate != nil {
		body.AutoRotate = *req.AutoRotate
	}
	return s.post(ctx, req.APIURL, PathRecognizeBatch, body)
}

// Inpaint removes the masked region using the service's default model.
func (s *Service) Inpaint(ctx context.Context, apiURL, imageData, maskData string) (any, error) {
	return s.post(ctx, apiURL, PathInpaint, maskRequest{ImageData: imageData, MaskData: maskData})
}

// AutoTextRequest is the input for automatic text removal.
type AutoTextRequest struct {
	APIURL    string
	ImageData string
	Boxes     json.RawMessage
	Dilate    *int
}

type autoTextBody struct {
	ImageData string          `json:"image_data"`
	Boxes     json.RawMessage `json:"boxes"`
	Dilate    int             `json:"dilate"`
}

// InpaintAutoText erases text inside boxes. Boxes are forwarded verbatim and
// sent as null when absent.
func (s *Service) InpaintAutoText(ctx context.Context, req AutoTextRequest) (any, error) {
	body := autoTextBody{ImageData: req.ImageData, Boxes: req.Boxes, Dilate: s.defaults.Dilate}
	if len(body.Boxes) == 0 {
		body.Boxes = json.RawMessage("null")
	}
	if req.Dilate != nil {
		body.Dilate = *req.Dilate
	}
	return s.post(ctx, req.APIURL, PathInpaintAutoText, body)
}

// ModelRequest is the input for the model-selectable inpainting endpoints.
type ModelRequest struct {
	APIURL    string
	ImageData string
	MaskData  string
	Model     *string
}

// InpaintLama runs a LaMa-family model over the mask.
func (s *Service) InpaintLama(ctx context.Context, req ModelRequest) (any, error) {
	return s.post(ctx, req.APIURL, PathInpaintLama, s.modelBody(req))
}

// InpaintManualMask inpaints a user-painted mask.
func (s *Service) InpaintManualMask(ctx context.Context, req ModelRequest) (any, error) {
	return s.post(ctx, req.APIURL, PathInpaintManual, s.modelBody(req))
}

type imageRequest struct {
	ImageData string `json:"image_data"`
}

type maskRequest struct {
	ImageData string `json:"image_data"`
	MaskData  string `json:"mask_data"`
}

type modelBody struct {
	ImageData string `json:"image_data"`
	MaskData  string `json:"mask_data"`
	Model     string `json:"model"`
}

func (s *Service) modelBody(req ModelRequest) modelBody {
	body := modelBody{ImageData: req.ImageData, MaskData: req.MaskData, Model: s.defaults.InpaintModel}
	if req.Model != nil {
		body.Model = *req.Model
	}
	return body
}

func (s *Service) post(ctx context.Context, apiURL, suffix string, body any) (any, error) {
	if err := requireURL(apiURL, strings.TrimPrefix(suffix, "/")); err != nil {
		return nil, err
	}
	return s.client.PostJSON(ctx, remote.Endpoint(apiURL, suffix), body)
}

func requireURL(apiURL, operation string) error {
	if strings.TrimSpace(apiURL) == "" {
		return services.Wrap(services.ErrValidation, "inference", operation, "apiUrl is required", nil)
	}
	return nil
}
