package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"leaflog/internal/misc"
)

// ErrAIResponseEmpty means the model produced no usable structured output.
// The feature degrades to "try again": no retry, no fallback model.
var ErrAIResponseEmpty = errors.New("AI response is empty")

const defaultAIBaseURL = "https://generativelanguage.googleapis.com"

// AI is the generative backend consumed by the AI handlers. Client talks to
// the Generative Language API; MockAI serves non-production contexts.
type AI interface {
	IdentifyPlant(ctx context.Context, imageDataURI string, description string) (PlantIdentification, error)
	DiagnosePlant(ctx context.Context, imageDataURI string, notes string) (PlantDiagnosis, error)
	RecommendCrops(ctx context.Context, spaceDescription string) (CropRecommendation, error)
}

type PlantIdentification struct {
	Name           string  `json:"name"`
	ScientificName string  `json:"scientific_name"`
	Confidence     float64 `json:"confidence"`
	Care           string  `json:"care"`
}

type PlantDiagnosis struct {
	Healthy bool         `json:"healthy"`
	Summary string       `json:"summary"`
	Issues  []PlantIssue `json:"issues"`
}

type PlantIssue struct {
	Name      string `json:"name"`
	Severity  string `json:"severity"`
	Treatment string `json:"treatment"`
}

type CropRecommendation struct {
	Crops []Crop `json:"crops"`
}

type Crop struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Season string `json:"season"`
}

type generateContentRequest struct {
	Contents         []genaiContent   `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type genaiContent struct {
	Parts []genaiPart `json:"parts"`
}

type genaiPart struct {
	Text       string           `json:"text,omitempty"`
	InlineData *genaiInlineData `json:"inline_data,omitempty"`
}

type genaiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"response_mime_type"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content genaiContent `json:"content"`
	} `json:"candidates"`
}

const identifyPrompt = `Identify the plant in the photo. ` +
	`Respond as JSON with fields: name (common name), scientific_name, ` +
	`confidence (0 to 1) and care (short watering/light summary). ` +
	`Owner's description: %s`

func (c Client) IdentifyPlant(ctx context.Context, imageDataURI string, description string) (PlantIdentification, error) {
	var out PlantIdentification
	err := c.generate(ctx, fmt.Sprintf(identifyPrompt, description), imageDataURI, &out)
	if err != nil {
		return PlantIdentification{}, err
	}
	if out.Name == "" {
		return PlantIdentification{}, errors.Wrap(ErrAIResponseEmpty, "identification has no name")
	}
	return out, nil
}

const diagnosePrompt = `Diagnose the health of the plant in the photo. ` +
	`Respond as JSON with fields: healthy (boolean), summary, and issues ` +
	`(array of {name, severity, treatment}). Owner's notes: %s`

func (c Client) DiagnosePlant(ctx context.Context, imageDataURI string, notes string) (PlantDiagnosis, error) {
	var out PlantDiagnosis
	err := c.generate(ctx, fmt.Sprintf(diagnosePrompt, notes), imageDataURI, &out)
	if err != nil {
		return PlantDiagnosis{}, err
	}
	if out.Summary == "" && len(out.Issues) == 0 {
		return PlantDiagnosis{}, errors.Wrap(ErrAIResponseEmpty, "diagnosis has no summary or issues")
	}
	return out, nil
}

const cropsPrompt = `Recommend crops to grow in the following space. ` +
	`Respond as JSON with field crops: array of {name, reason, season}. ` +
	`Space: %s`

func (c Client) RecommendCrops(ctx context.Context, spaceDescription string) (CropRecommendation, error) {
	var out CropRecommendation
	err := c.generate(ctx, fmt.Sprintf(cropsPrompt, spaceDescription), "", &out)
	if err != nil {
		return CropRecommendation{}, err
	}
	if len(out.Crops) == 0 {
		return CropRecommendation{}, errors.Wrap(ErrAIResponseEmpty, "recommendation has no crops")
	}
	return out, nil
}

// generate performs one generateContent round trip in JSON response mode
// and unmarshals the model's text output into result.
func (c Client) generate(ctx context.Context, prompt string, imageDataURI string, result any) error {
	parts := []genaiPart{{Text: prompt}}
	if imageDataURI != "" {
		mimeType, data, err := splitDataURI(imageDataURI)
		if err != nil {
			return errors.Wrap(err, "error splitting image data URI")
		}
		parts = append(parts, genaiPart{InlineData: &genaiInlineData{MIMEType: mimeType, Data: data}})
	}

	reqBody, err := json.Marshal(generateContentRequest{
		Contents:         []genaiContent{{Parts: parts}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return errors.Wrap(err, "error marshalling generateContent request")
	}

	baseURL := c.AIBaseURL
	if baseURL == "" {
		baseURL = defaultAIBaseURL
	}
	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", baseURL, c.AIModel, c.AIKey)

	req, err := newRequest(http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrapf(err, "error creating request for model: %s", c.AIModel)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "error doing generateContent request for model: %s", c.AIModel)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("Error closing generateContent response body, err: %v", err)
		}
	}()

	respBody, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 300000))
	if err != nil {
		return errors.Wrap(err, "error reading generateContent response body")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("generateContent returned status %d, body: %s", resp.StatusCode, respBody)
	}

	genResp := generateContentResponse{}
	if err = json.Unmarshal(respBody, &genResp); err != nil {
		return errors.Wrapf(err, "error unmarshalling generateContent response body: %s", respBody)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return errors.Wrap(ErrAIResponseEmpty, "generateContent returned no candidates")
	}
	text := genResp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return errors.Wrap(ErrAIResponseEmpty, "generateContent candidate has no text")
	}
	return errors.Wrapf(json.Unmarshal([]byte(text), result),
		"error unmarshalling structured model output: %s", text)
}

// splitDataURI splits a "data:image/...;base64,..." URI into its MIME type
// and base64 payload. The payload is passed through opaque.
func splitDataURI(uri string) (mimeType string, data string, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", errors.Errorf("not a data URI: %s", misc.StringLimit(uri, 24))
	}
	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", "", errors.New("data URI is not base64-encoded")
	}
	return rest[:sep], rest[sep+len(";base64,"):], nil
}
