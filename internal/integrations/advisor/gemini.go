// README: Optional Gemini-backed rationale text for recommendations.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const callTimeout = 2 * time.Second

// Advisor produces a short Korean rationale sentence for a recommendation.
// Purely decorative: the deterministic scan and the current-conditions block
// never depend on its output, and any failure is swallowed by the caller.
type Advisor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func New(ctx context.Context, apiKey string) (*Advisor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0.4)

	return &Advisor{client: client, model: model}, nil
}

func (a *Advisor) Close() {
	a.client.Close()
}

// Rationale asks the model for one sentence explaining the pick.
func (a *Advisor) Rationale(ctx context.Context, origin, destination string, departAt time.Time, congestionLevel int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"%s에서 %s까지 가는 여행자에게 %s 출발을 추천하는 이유를 한 문장으로 설명해줘. "+
			"예상 혼잡도 레벨은 %d(1=매우 좋음, 5=매우 혼잡)야. 존댓말로, 50자 이내로.",
		origin, destination, departAt.Format("15:04"), congestionLevel)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(text.String()), nil
}
