package rag

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/govseek/govseek"
)

// answerInstructions is the fixed persona embedded in the grounded system
// prompt. The retrieved context is appended after a blank line.
const answerInstructions = "You are an assistant for question-answering tasks. " +
	"Use the following pieces of retrieved context to answer the question. " +
	"If you don't know the answer, say that you don't know."

// Answer is the outcome of one orchestration turn.
type Answer struct {
	Text    string
	Sources []string
}

// Pipeline is the retrieval orchestration state machine. Each turn runs
// decide-or-respond, then either responds directly or invokes the retrieval
// tool and generates a grounded answer. Turns for the same thread are
// serialized; different threads proceed independently.
//
// A completion or tool failure aborts the turn: the thread keeps the
// triggering user message but gains no assistant response, so the
// conversation can be retried.
type Pipeline struct {
	LLM     govseek.Completer
	Tool    *Tool
	Threads govseek.ThreadStore
	Logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Run executes one conversational turn on the given thread. A new thread id
// starts a fresh conversation; a reused id continues it, isolated from all
// other threads.
func (p *Pipeline) Run(ctx context.Context, inputText, threadID string) (*Answer, error) {
	if inputText == "" {
		return nil, govseek.Errorf(govseek.EINVALID, "input text required")
	}
	if threadID == "" {
		return nil, govseek.Errorf(govseek.EINVALID, "thread ID required")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("thread", threadID)

	lock := p.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	thread, err := p.Threads.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}

	thread.Messages = append(thread.Messages, govseek.Message{
		Role:    govseek.RoleUser,
		Content: inputText,
	})
	// The user message is recorded even if the rest of the turn fails.
	if err := p.Threads.Save(ctx, thread); err != nil {
		return nil, err
	}

	// DecideOrRespond: the completion service sees the full history with
	// the retrieval tool available, and either answers directly or
	// requests tool calls.
	decision, err := p.LLM.Complete(ctx, thread.Messages, []govseek.ToolDefinition{p.Tool.Definition()})
	if err != nil {
		return nil, err
	}

	if len(decision.ToolCalls) == 0 {
		final := govseek.Message{Role: govseek.RoleAssistant, Content: decision.Text}
		thread.Messages = append(thread.Messages, final)
		thread.LastSources = nil
		if err := p.Threads.Save(ctx, thread); err != nil {
			return nil, err
		}
		logger.Debug("responded without retrieval")
		return &Answer{Text: final.Content}, nil
	}

	// InvokeTool: one retrieval per requested call, one tool-result
	// message per call. Tool failures abort the turn before anything
	// beyond the user message is saved.
	toolResults := make([]govseek.Message, 0, len(decision.ToolCalls))
	for _, call := range decision.ToolCalls {
		serialized, _, err := p.Tool.Retrieve(ctx, call.Query)
		if err != nil {
			return nil, err
		}
		toolResults = append(toolResults, govseek.Message{
			Role:    govseek.RoleTool,
			Content: serialized,
		})
	}
	thread.Messages = append(thread.Messages, govseek.Message{
		Role:      govseek.RoleAssistant,
		Content:   decision.Text,
		ToolCalls: decision.ToolCalls,
	})
	thread.Messages = append(thread.Messages, toolResults...)

	final, err := p.generate(ctx, thread)
	if err != nil {
		return nil, err
	}

	thread.Messages = append(thread.Messages, *final)
	thread.LastSources = final.Sources
	if err := p.Threads.Save(ctx, thread); err != nil {
		return nil, err
	}

	logger.Debug("responded with retrieval",
		"toolCalls", len(decision.ToolCalls),
		"sources", len(final.Sources),
	)
	return &Answer{Text: final.Content, Sources: final.Sources}, nil
}

// generate builds the grounded prompt from this turn's tool results and
// asks the completion service for the final answer.
func (p *Pipeline) generate(ctx context.Context, thread *govseek.Thread) (*govseek.Message, error) {
	// This turn's retrieval outputs are the contiguous run of trailing
	// tool messages, restored to chronological order.
	var toolMessages []govseek.Message
	for i := len(thread.Messages) - 1; i >= 0; i-- {
		if thread.Messages[i].Role != govseek.RoleTool {
			break
		}
		toolMessages = append([]govseek.Message{thread.Messages[i]}, toolMessages...)
	}

	contents := make([]string, 0, len(toolMessages))
	for _, msg := range toolMessages {
		contents = append(contents, msg.Content)
	}
	docsContent := strings.Join(contents, "\n\n")

	sources := ExtractSources(docsContent)
	grounding := StripSourceMarkers(docsContent)

	system := govseek.Message{
		Role:    govseek.RoleSystem,
		Content: answerInstructions + "\n\n" + grounding,
	}

	// Tool-call-only assistant turns and raw tool results are excluded
	// from what the model sees as conversation.
	prompt := []govseek.Message{system}
	for _, msg := range thread.Messages {
		switch msg.Role {
		case govseek.RoleUser, govseek.RoleSystem:
			prompt = append(prompt, msg)
		case govseek.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				prompt = append(prompt, msg)
			}
		}
	}

	completion, err := p.LLM.Complete(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}

	return &govseek.Message{
		Role:    govseek.RoleAssistant,
		Content: completion.Text,
		Sources: sources,
	}, nil
}

func (p *Pipeline) threadLock(threadID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.locks == nil {
		p.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := p.locks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[threadID] = lock
	}
	return lock
}

var sourceLineRE = regexp.MustCompile(`(?m)^Source: (.+)$`)

// ExtractSources returns the distinct source URLs named by "Source:"
// markers in serialized retrieval content. "Unknown" markers are dropped.
// Order follows first occurrence but is not part of the contract.
func ExtractSources(content string) []string {
	var sources []string
	seen := make(map[string]struct{})
	for _, match := range sourceLineRE.FindAllStringSubmatch(content, -1) {
		source := strings.TrimSpace(match[1])
		if source == "" || source == unknownSource {
			continue
		}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		sources = append(sources, source)
	}
	return sources
}

var sourceMarkerRE = regexp.MustCompile(`(?m)^Source: .*\n?`)

// StripSourceMarkers removes "Source:" lines from serialized retrieval
// content, leaving only the context passed to the model.
func StripSourceMarkers(content string) string {
	return sourceMarkerRE.ReplaceAllString(content, "")
}
