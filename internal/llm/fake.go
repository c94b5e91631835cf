package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// FakeClient returns deterministic, minimal payloads for offline use and
// testing. Responses can be keyed by a substring of the prompt.
type FakeClient struct {
	// Responses maps a prompt substring to a canned reply. The first
	// matching entry wins; Default is used when nothing matches.
	Responses map[string]string
	Default   string

	Calls []FakeCall
}

type FakeCall struct {
	Prompt string
	Input  string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Default: "fake response"}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateText(ctx context.Context, prompt, input string) (string, error) {
	f.Calls = append(f.Calls, FakeCall{Prompt: prompt, Input: input})
	for key, resp := range f.Responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	return f.Default, nil
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.Marshal(input)
	out, err := f.GenerateText(ctx, prompt, string(in))
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(out)) {
		b, _ := json.Marshal(map[string]string{"text": out})
		return json.RawMessage(b), nil
	}
	return json.RawMessage(out), nil
}
