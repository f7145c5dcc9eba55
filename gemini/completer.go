// Package gemini implements the completion and embedding services using
// Google Gemini.
package gemini

import (
	"context"

	"github.com/govseek/govseek"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Completer implements govseek.Completer at compile time.
var _ govseek.Completer = (*Completer)(nil)

// Completer implements govseek.Completer using Google Gemini.
type Completer struct {
	client *genai.Client
}

// NewCompleter creates a new Completer.
func NewCompleter(client *genai.Client) *Completer {
	return &Completer{client: client}
}

// Complete sends the conversation to Gemini and returns either answer text
// or the tool calls the model requested.
func (c *Completer) Complete(ctx context.Context, messages []govseek.Message, tools []govseek.ToolDefinition) (*govseek.Completion, error) {
	if len(messages) == 0 {
		return nil, govseek.Errorf(govseek.EINVALID, "messages required")
	}

	contents := BuildContents(messages)
	config := BuildConfig(SystemText(messages), tools)

	result, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, govseek.Errorf(govseek.EINTERNAL, "gemini returned nil result")
	}

	completion := &govseek.Completion{Text: result.Text()}
	for _, call := range result.FunctionCalls() {
		query, _ := call.Args["query"].(string)
		completion.ToolCalls = append(completion.ToolCalls, govseek.ToolCall{
			ID:    call.ID,
			Name:  call.Name,
			Query: query,
		})
	}

	return completion, nil
}

// SystemText joins the system messages into the system instruction text.
func SystemText(messages []govseek.Message) string {
	var text string
	for _, msg := range messages {
		if msg.Role != govseek.RoleSystem {
			continue
		}
		if text != "" {
			text += "\n\n"
		}
		text += msg.Content
	}
	return text
}

// BuildContents converts a conversation to the Gemini content format.
// System messages are omitted here and carried in the system instruction
// instead. Tool results become function responses attributed to the call
// that produced them, in order.
func BuildContents(messages []govseek.Message) []*genai.Content {
	var contents []*genai.Content
	var pendingCalls []govseek.ToolCall

	for _, msg := range messages {
		switch msg.Role {
		case govseek.RoleSystem:
			continue

		case govseek.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})

		case govseek.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, genai.NewPartFromFunctionCall(call.Name, map[string]any{
					"query": call.Query,
				}))
			}
			pendingCalls = append([]govseek.ToolCall(nil), msg.ToolCalls...)
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})

		case govseek.RoleTool:
			name := "retrieve"
			if len(pendingCalls) > 0 {
				name = pendingCalls[0].Name
				pendingCalls = pendingCalls[1:]
			}
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{genai.NewPartFromFunctionResponse(name, map[string]any{
					"result": msg.Content,
				})},
			})
		}
	}

	return contents
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(systemText string, tools []govseek.ToolDefinition) *genai.GenerateContentConfig {
	temp := float32(0.4)
	config := &genai.GenerateContentConfig{Temperature: &temp}

	if systemText != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemText}},
		}
	}

	if len(tools) > 0 {
		declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, tool := range tools {
			declarations = append(declarations, &genai.FunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {Type: genai.TypeString, Description: "The search query."},
					},
					Required: []string{"query"},
				},
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	return config
}
