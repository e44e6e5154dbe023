package agent

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"sync"
	"text/template"

	"github.com/checkmarble/llmberjack"
	"github.com/checkmarble/llmberjack/llms/aistudio"
	"github.com/checkmarble/llmberjack/llms/openai"
	"github.com/cockroachdb/errors"

	"github.com/studykit/studybot-backend/infra"
	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/utils"
)

//go:embed prompts/*.md
var promptFs embed.FS

var promptPathByMode = map[models.StudyMode]string{
	models.StudyModeFlashcards: "prompts/flashcards.md",
	models.StudyModeNotes:      "prompts/notes.md",
	models.StudyModeQuiz:       "prompts/quiz.md",
}

type studyArtifactOutput struct {
	Content string `json:"content" jsonschema_description:"The generated study material, as plain text ready to be sent to the user"`
}

// Agent wraps the LLM client used to turn study material into artifacts.
type Agent struct {
	config infra.AgentConfig

	adapter *llmberjack.Llmberjack
	mu      sync.Mutex
}

func New(config infra.AgentConfig) *Agent {
	return &Agent{config: config}
}

func (a *Agent) createOpenAIProvider() (llmberjack.Llm, error) {
	opts := []openai.Opt{}
	if a.config.BaseUrl != "" {
		opts = append(opts, openai.WithBaseUrl(a.config.BaseUrl))
	}
	if a.config.ApiKey != "" {
		opts = append(opts, openai.WithApiKey(a.config.ApiKey))
	}

	provider, err := openai.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create OpenAI provider")
	}
	return provider, nil
}

func (a *Agent) createAIStudioProvider() (llmberjack.Llm, error) {
	opts := []aistudio.Opt{}
	if a.config.ApiKey != "" {
		opts = append(opts, aistudio.WithApiKey(a.config.ApiKey))
	}

	provider, err := aistudio.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AI Studio provider")
	}
	return provider, nil
}

func (a *Agent) getClient() (*llmberjack.Llmberjack, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.adapter != nil {
		return a.adapter, nil
	}

	var mainProvider llmberjack.Llm
	var err error

	switch a.config.ProviderType {
	case infra.AgentProviderTypeOpenAI:
		mainProvider, err = a.createOpenAIProvider()
	case infra.AgentProviderTypeAIStudio:
		mainProvider, err = a.createAIStudioProvider()
	default:
		return nil, errors.Errorf("unsupported provider type: %s", a.config.ProviderType)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM provider")
	}

	adapter, err := llmberjack.New(llmberjack.WithProvider("main", mainProvider))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM adapter")
	}

	a.adapter = adapter
	return a.adapter, nil
}

// preparePrompt renders the embedded prompt template for the mode with the
// extracted material.
func preparePrompt(mode models.StudyMode, material string) (string, error) {
	promptPath, ok := promptPathByMode[mode]
	if !ok {
		return "", errors.Wrapf(models.ErrUnknownStudyMode, "'%s'", mode)
	}

	promptContent, err := promptFs.ReadFile(promptPath)
	if err != nil {
		return "", errors.Wrapf(err, "could not read prompt file %s", promptPath)
	}

	tmpl, err := template.New(promptPath).Parse(string(promptContent))
	if err != nil {
		return "", errors.Wrapf(err, "could not parse prompt template %s", promptPath)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"material": material}); err != nil {
		return "", errors.Wrapf(err, "could not render prompt template %s", promptPath)
	}
	return buf.String(), nil
}

// GenerateStudyArtifact runs one generation and returns the artifact text and
// the model that produced it.
func (a *Agent) GenerateStudyArtifact(ctx context.Context, mode models.StudyMode,
	material string,
) (string, string, error) {
	logger := utils.LoggerFromContext(ctx)

	client, err := a.getClient()
	if err != nil {
		return "", "", err
	}

	prompt, err := preparePrompt(mode, material)
	if err != nil {
		return "", "", err
	}

	model := a.config.DefaultModel
	logger.DebugContext(ctx, "Generating study artifact",
		"mode", mode, "model", model, "material_length", len(material))

	request, err := llmberjack.NewRequest[studyArtifactOutput]().
		WithModel(model).
		WithText(llmberjack.RoleUser, prompt).
		WithThinking(false).
		Do(ctx, client)
	if err != nil {
		return "", "", errors.Wrap(err, fmt.Sprintf("LLM generation failed for mode %s", mode))
	}

	output, err := request.Get(0)
	if err != nil {
		return "", "", errors.Wrap(err, "could not read LLM response")
	}

	return output.Content, model, nil
}
