package client

import "context"

// MockAI returns canned structures so the rest of the app can be exercised
// without credentials. Selected by the ai_use_mock config flag.
type MockAI struct{}

func (MockAI) IdentifyPlant(ctx context.Context, imageDataURI string, description string) (PlantIdentification, error) {
	return PlantIdentification{
		Name:           "Golden pothos",
		ScientificName: "Epipremnum aureum",
		Confidence:     0.42,
		Care:           "Water when the top of the soil is dry; bright indirect light.",
	}, nil
}

func (MockAI) DiagnosePlant(ctx context.Context, imageDataURI string, notes string) (PlantDiagnosis, error) {
	return PlantDiagnosis{
		Healthy: true,
		Summary: "No visible signs of disease or pests.",
		Issues:  []PlantIssue{},
	}, nil
}

func (MockAI) RecommendCrops(ctx context.Context, spaceDescription string) (CropRecommendation, error) {
	return CropRecommendation{
		Crops: []Crop{
			{Name: "Cherry tomato", Reason: "Tolerates containers and partial sun.", Season: "spring"},
			{Name: "Lettuce", Reason: "Fast growing, shallow roots.", Season: "autumn"},
		},
	}, nil
}
