package commands

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"mangatl/internal/services/inference"
	"mangatl/internal/services/remote"
	"mangatl/internal/services/translate"
)

type apiArgs struct {
	APIURL string `json:"apiUrl"`
}

type imageArgs struct {
	APIURL    string `json:"apiUrl"`
	ImageData string `json:"imageData"`
}

type recognizeArgs struct {
	APIURL     string   `json:"apiUrl"`
	ImagesData []string `json:"imagesData"`
	Engine     *string  `json:"engine"`
	Langs      []string `json:"langs"`
	AutoRotate *bool    `json:"autoRotate"`
}

type maskArgs struct {
	APIURL    string  `json:"apiUrl"`
	ImageData string  `json:"imageData"`
	MaskData  string  `json:"maskData"`
	Model     *string `json:"model"`
}

type autoTextArgs struct {
	APIURL    string          `json:"apiUrl"`
	ImageData string          `json:"imageData"`
	Boxes     json.RawMessage `json:"boxes"`
	Dilate    *int            `json:"dilate"`
}

type translateArgs struct {
	APIURL   string          `json:"apiUrl"`
	Payload  json.RawMessage `json:"payload"`
	StreamID string          `json:"streamId"`
}

type deeplxArgs struct {
	APIURL     string   `json:"apiUrl"`
	APIKey     *string  `json:"apiKey"`
	Texts      []string `json:"texts"`
	TargetLang string   `json:"targetLang"`
	SourceLang *string  `json:"sourceLang"`
}

type urlArgs struct {
	URL string `json:"url"`
}

func registerInference(r *Registry, svc *inference.Service) {
	r.Register("fetch_models", typed(func(ctx context.Context, a apiArgs) (any, error) {
		return svc.FetchModels(ctx, a.APIURL)
	}))
	r.Register("detect_text_areas", typed(func(ctx context.Context, a imageArgs) (any, error) {
		return svc.DetectTextAreas(ctx, a.APIURL, a.ImageData)
	}))
	r.Register("detect_panels", typed(func(ctx context.Context, a imageArgs) (any, error) {
		return svc.DetectPanels(ctx, a.APIURL, a.ImageData)
	}))
	r.Register("recognize_images_batch", typed(func(ctx context.Context, a recognizeArgs) (any, error) {
		return svc.RecognizeBatch(ctx, inference.RecognizeRequest{
			APIURL:     a.APIURL,
			ImagesData: a.ImagesData,
			Engine:     a.Engine,
			Langs:      a.Langs,
			AutoRotate: a.AutoRotate,
		})
	}))
	r.Register("inpaint_image", typed(func(ctx context.Context, a maskArgs) (any, error) {
		return svc.Inpaint(ctx, a.APIURL, a.ImageData, a.MaskData)
	}))
	r.Register("inpaint_text_auto", typed(func(ctx context.Context, a autoTextArgs) (any, error) {
		return svc.InpaintAutoText(ctx, inference.AutoTextRequest{
			APIURL:    a.APIURL,
			ImageData: a.ImageData,
			Boxes:     a.Boxes,
			Dilate:    a.Dilate,
		})
	}))
	r.Register("inpaint_lama", typed(func(ctx context.Context, a maskArgs) (any, error) {
		return svc.InpaintLama(ctx, a.modelRequest())
	}))
	r.Register("inpaint_manual_mask", typed(func(ctx context.Context, a maskArgs) (any, error) {
		return svc.InpaintManualMask(ctx, a.modelRequest())
	}))
}

func (a maskArgs) modelRequest() inference.ModelRequest {
	return inference.ModelRequest{APIURL: a.APIURL, ImageData: a.ImageData, MaskData: a.MaskData, Model: a.Model}
}

func registerTranslate(r *Registry, svc *translate.Service) {
	r.Register("translate_text", typed(func(ctx context.Context, a translateArgs) (any, error) {
		return svc.Translate(ctx, a.APIURL, a.Payload)
	}))
	r.Register("translate_text_stream", typed(func(ctx context.Context, a translateArgs) (any, error) {
		result, err := svc.Stream(ctx, a.APIURL, a.Payload, a.StreamID)
		if err != nil {
			return nil, err
		}
		return result, nil
	}))
	r.Register("translate_deeplx", typed(func(ctx context.Context, a deeplxArgs) (any, error) {
		req := translate.DeepLXRequest{
			APIURL:     a.APIURL,
			Texts:      a.Texts,
			TargetLang: a.TargetLang,
			SourceLang: a.SourceLang,
		}
		if a.APIKey != nil {
			req.APIKey = *a.APIKey
		}
		return svc.DeepLX(ctx, req)
	}))
}

func registerFetch(r *Registry, client *remote.Client) {
	r.Register("fetch_image", typed(func(ctx context.Context, a urlArgs) (any, error) {
		data, err := client.FetchBytes(ctx, a.URL)
		if err != nil {
			return nil, err
		}
		return base64.StdEncoding.EncodeToString(data), nil
	}))
}
