package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// DraftLine is one proposed purchase line. Quantities and amounts are exact
// decimal strings so no precision is lost between the model and the ledger.
type DraftLine struct {
	ItemCode string `json:"item_code" jsonschema_description:"The exact item code from the provided stock catalog"`
	Quantity string `json:"quantity" jsonschema_description:"Quantity received, as a positive decimal string"`
	UnitCost string `json:"unit_cost" jsonschema_description:"Purchase price per unit as a decimal string (e.g. '85000'), 0 if unknown"`
}

// PurchaseDraft is the AI-proposed purchase entry. It is a draft for human
// confirmation, never written to the ledger directly.
type PurchaseDraft struct {
	SupplierName string      `json:"supplier_name" jsonschema_description:"Supplier name exactly as mentioned, empty string if not mentioned"`
	Date         string      `json:"date" jsonschema_description:"Purchase date in YYYY-MM-DD format; use today's date if unspecified"`
	ShippingCost string      `json:"shipping_cost" jsonschema_description:"Shipping cost as a decimal string, '0' if none mentioned"`
	Credit       bool        `json:"credit" jsonschema_description:"True when the purchase is on credit (hutang/tempo), false when paid in full on receipt"`
	DueDate      string      `json:"due_date" jsonschema_description:"Debt due date in YYYY-MM-DD format, empty string if not mentioned"`
	Received     bool        `json:"received" jsonschema_description:"True when the goods have already been received"`
	Lines        []DraftLine `json:"lines" jsonschema_description:"The proposed purchase lines; one per distinct item"`
	Confidence   float64     `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning    string      `json:"reasoning" jsonschema_description:"Brief explanation of how the input was interpreted"`
}

// AgentService interprets free-text purchase notes into structured drafts.
type AgentService interface {
	InterpretPurchase(ctx context.Context, naturalLanguage, stockCatalog string) (*PurchaseDraft, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// InterpretPurchase asks the model to turn a free-text note ("beli 10 sak
// beras @85.000 dari Toko Makmur, ongkir 20rb, hutang") into a PurchaseDraft
// using strict JSON-schema structured output. stockCatalog is the plain-text
// item list the model must pick codes from.
func (a *Agent) InterpretPurchase(ctx context.Context, naturalLanguage, stockCatalog string) (*PurchaseDraft, error) {
	prompt := fmt.Sprintf(`You are a data-entry assistant for a cooperative shop's purchase ledger.
Interpret a goods-received note written in Indonesian or English and propose a structured purchase entry.
Rules:
1. Use ONLY item codes from the stock catalog below. Skip goods you cannot match and mention them in the reasoning.
2. Quantities and amounts must be exact decimal strings.
3. "hutang", "tempo", "bayar nanti" mean the purchase is on credit.
4. Provide a confidence score (0.0-1.0).

Stock catalog:
%s

Note: %s`, stockCatalog, naturalLanguage)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "purchase_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A proposed supplier purchase entry"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, errors.New("empty response content")
	}

	var draft PurchaseDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if len(draft.Lines) == 0 {
		return nil, fmt.Errorf("no purchase lines could be extracted: %s", draft.Reasoning)
	}
	return &draft, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v PurchaseDraft
	return reflector.Reflect(v)
}
