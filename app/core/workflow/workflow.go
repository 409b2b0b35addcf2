// Package workflow routes user utterances to the task store: intent
// classification, task extraction and creation, and read-only queries.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	config "elias/app/configs"
	"elias/app/core/ai"
	"elias/app/core/directory"
	"elias/app/core/notion"
	"elias/app/pkg/logger"
	"elias/app/pkg/types"
)

const maxSummaryTasks = 5

// createResult records the outcome of one draft on the create path.
type createResult struct {
	draft ai.Draft
	task  notion.Task
	err   error
}

// Orchestrator is the conversational agent: it classifies each message,
// runs the matching branch and renders a Spanish reply.
type Orchestrator struct {
	router     *Router
	llm        Completer
	tasks      *notion.TasksService
	projects   *directory.Directory
	pacing     time.Duration
	queryLimit int
}

func NewOrchestrator(llm Completer, tasks *notion.TasksService, projects *directory.Directory, cfg config.WorkflowConfig) *Orchestrator {
	limit := cfg.QueryLimit
	if limit <= 0 {
		limit = 100
	}
	return &Orchestrator{
		router:     NewRouter(llm),
		llm:        llm,
		tasks:      tasks,
		projects:   projects,
		pacing:     time.Duration(cfg.CreatePacingMS) * time.Millisecond,
		queryLimit: limit,
	}
}

func (o *Orchestrator) Name() string {
	return "elias"
}

// Process handles one inbound message end to end. The returned message
// is the reply; errors are reserved for broken message plumbing, user
// facing failures are rendered into the reply text instead.
func (o *Orchestrator) Process(ctx context.Context, msg types.Message) (types.Message, error) {
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return reply(msg, "📭 No recibí ningún texto. Escríbeme qué necesitas hacer."), nil
	}

	if strings.HasPrefix(text, "/") {
		return reply(msg, o.handleCommand(ctx, text)), nil
	}

	decision := o.router.Classify(ctx, text)
	logger.Info("Processing message from %s: intent=%s fallback=%t", msg.UserID, decision.Intent, decision.Fallback)

	switch decision.Intent {
	case IntentCreate:
		return reply(msg, o.handleCreate(ctx, text)), nil
	default:
		return reply(msg, o.handleQuery(ctx, text)), nil
	}
}

// handleCommand serves the fixed slash commands.
func (o *Orchestrator) handleCommand(ctx context.Context, text string) string {
	command := strings.ToLower(strings.Fields(text)[0])
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	switch command {
	case "/start":
		return "👋 ¡Hola! Soy tu asistente de tareas.\n\n" +
			"Escríbeme en lenguaje natural y yo me encargo:\n" +
			"• \"Tengo que comprar vitaminas mañana\"\n" +
			"• \"¿Qué tareas tengo pendientes?\"\n\n" +
			"Usa /help para ver todo lo que puedo hacer."
	case "/help":
		return "📖 Comandos disponibles:\n" +
			"/start - mensaje de bienvenida\n" +
			"/help - esta ayuda\n" +
			"/proyectos - lista tus proyectos\n\n" +
			"O simplemente escríbeme: creo tareas y respondo consultas."
	case "/proyectos":
		names := o.projects.Names(ctx)
		if len(names) == 0 {
			return "📭 No encontré proyectos disponibles."
		}
		var b strings.Builder
		b.WriteString("📂 Proyectos disponibles:\n")
		for _, name := range names {
			b.WriteString("• " + name + "\n")
		}
		return strings.TrimRight(b.String(), "\n")
	default:
		return "❓ No conozco ese comando. Usa /help para ver los disponibles."
	}
}

// handleCreate runs extraction and persists each draft independently. A
// failing draft does not abort the batch; successes already persisted
// stay persisted.
func (o *Orchestrator) handleCreate(ctx context.Context, text string) string {
	drafts := o.extractDrafts(ctx, text)
	results := make([]createResult, 0, len(drafts))

	for i, draft := range drafts {
		if i > 0 && o.pacing > 0 {
			time.Sleep(o.pacing)
		}
		task, err := o.createFromDraft(ctx, draft)
		if err != nil {
			logger.Error("Task creation failed for %q: %v", draft.Title, err)
		}
		results = append(results, createResult{draft: draft, task: task, err: err})
	}
	return o.renderCreateReply(ctx, results)
}

// extractDrafts asks the model for structured tasks, degrading to a
// single fallback draft built from the raw utterance.
func (o *Orchestrator) extractDrafts(ctx context.Context, text string) []ai.Draft {
	prompt := ai.BuildExtraction(text, o.projects.Names(ctx), time.Now())
	raw, err := o.llm.Complete(ctx, prompt)
	if err != nil {
		logger.Error("Task extraction call failed: %v", err)
		return []ai.Draft{ai.FallbackDraft(text)}
	}
	drafts, ok := ai.ParseTaskPayload(raw)
	if !ok || len(drafts) == 0 {
		logger.Error("Task extraction returned unparseable output")
		return []ai.Draft{ai.FallbackDraft(text)}
	}
	return drafts
}

func (o *Orchestrator) createFromDraft(ctx context.Context, draft ai.Draft) (notion.Task, error) {
	task := notion.Task{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      notion.TaskStatusNotStarted,
		Priority:    draft.Priority,
		DueDate:     draft.DueDate,
	}
	if draft.ProjectName != "" {
		if id, ok := o.projects.Resolve(ctx, draft.ProjectName); ok {
			task.ProjectIDs = []string{id}
		} else {
			logger.Info("Project %q not resolved, creating task without project", draft.ProjectName)
		}
	}
	return o.tasks.Create(ctx, task)
}

func (o *Orchestrator) renderCreateReply(ctx context.Context, results []createResult) string {
	var b strings.Builder
	created := 0
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(&b, "❌ %s: no se pudo crear\n", r.draft.Title)
			continue
		}
		created++
		fmt.Fprintf(&b, "✅ %s", r.task.Title)
		if len(r.task.ProjectIDs) > 0 {
			fmt.Fprintf(&b, " (%s)", o.projects.NameByID(ctx, r.task.ProjectIDs[0]))
		}
		if r.task.DueDate != "" {
			fmt.Fprintf(&b, " · 📅 %s", r.task.DueDate)
		}
		b.WriteString("\n")
	}

	switch {
	case created == 0:
		return "❌ No pude crear ninguna tarea. Inténtalo de nuevo.\n\n" + strings.TrimRight(b.String(), "\n")
	case len(results) == 1:
		return "✨ Tarea creada:\n" + strings.TrimRight(b.String(), "\n")
	default:
		header := fmt.Sprintf("✨ %d de %d tareas creadas:\n", created, len(results))
		return header + strings.TrimRight(b.String(), "\n")
	}
}

// handleQuery lists current tasks and renders a summary. The model is
// asked for a natural reply; on failure the templated listing stands on
// its own. A store failure is the only user-facing error here.
func (o *Orchestrator) handleQuery(ctx context.Context, text string) string {
	tasks, err := o.tasks.List(ctx, "")
	if err != nil {
		logger.Error("Task listing failed: %v", err)
		return "❌ No pude consultar tus tareas en este momento. Inténtalo más tarde."
	}
	if len(tasks) == 0 {
		return "📭 No tienes tareas registradas. ¡Escríbeme una para empezar!"
	}
	if len(tasks) > o.queryLimit {
		tasks = tasks[:o.queryLimit]
	}

	formatted := o.formatTasks(ctx, tasks)
	if rendered, err := o.llm.Complete(ctx, ai.BuildSummary(text, formatted)); err == nil {
		return rendered
	} else {
		logger.Error("Query summary call failed, using templated listing: %v", err)
	}
	return "📋 Tus tareas:\n" + formatted
}

// formatTasks renders a bounded bullet list, newest first.
func (o *Orchestrator) formatTasks(ctx context.Context, tasks []notion.Task) string {
	var b strings.Builder
	shown := len(tasks)
	if shown > maxSummaryTasks {
		shown = maxSummaryTasks
	}
	for _, t := range tasks[:shown] {
		fmt.Fprintf(&b, "• %s [%s · %s]", t.Title, t.Status, t.Priority)
		if t.DueDate != "" {
			fmt.Fprintf(&b, " 📅 %s", t.DueDate)
		}
		if len(t.ProjectIDs) > 0 {
			fmt.Fprintf(&b, " (%s)", o.projects.NameByID(ctx, t.ProjectIDs[0]))
		}
		b.WriteString("\n")
	}
	if rest := len(tasks) - shown; rest > 0 {
		fmt.Fprintf(&b, "... y %d más", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}

// reply builds the outbound message mirrored back onto the inbound
// addressing fields.
func reply(in types.Message, content string) types.Message {
	return types.Message{
		Content:   content,
		Role:      types.MessageRoleAssistant,
		ChannelID: in.ChannelID,
		UserID:    in.UserID,
		ChatID:    in.ChatID,
		RequestID: in.RequestID,
	}
}
