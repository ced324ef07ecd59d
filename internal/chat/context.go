package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sajjat43/ai-agent/internal/logger"
)

// Prompt budgets. Chat prompts carry a wider window; analysis prompts
// shrink everything else because the file content dominates the budget.
const (
	chatHistoryTurns     = 10
	chatContextFiles     = 5
	analysisHistoryTurns = 5
	analysisOtherFiles   = 3

	responsePreviewLimit = 200
	filePreviewLimit     = 500
	analysisPreviewLimit = 150
	analysisContentLimit = 8000
)

const analysisTruncationNotice = "\n\n[Content truncated - showing first 8,000 characters]"

const uploadDateLayout = "2006-01-02"

// Assembler builds provider prompts from recent history and uploaded
// files. A store-read failure never fails the request: the affected block
// degrades to "no context" and the raw message goes out unchanged.
type Assembler struct {
	repo *Repo
	log  *logger.Logger
}

func NewAssembler(repo *Repo, log *logger.Logger) *Assembler {
	return &Assembler{repo: repo, log: log.With("component", "context")}
}

// ContextUsage reports what went into an assembled chat prompt; it is
// echoed back to the client.
type ContextUsage struct {
	ConversationHistory bool `json:"conversationHistory"`
	UploadedFiles       bool `json:"uploadedFiles"`
	HistoryCount        int  `json:"historyCount"`
	FilesCount          int  `json:"filesCount"`
}

// BuildChatPrompt augments a raw user message with recent turns and file
// excerpts. With no context on record the prompt is the raw message,
// byte for byte.
func (a *Assembler) BuildChatPrompt(ctx context.Context, sessionID, message string) (string, ContextUsage) {
	recent, err := a.repo.ListRecentTurnsDesc(ctx, sessionID, chatHistoryTurns)
	if err != nil {
		a.log.Warn("history read failed, assembling without conversation context",
			"session_id", sessionID, "error", err)
		recent = nil
	}
	files, err := a.repo.ListRecentFilesDesc(ctx, sessionID, chatContextFiles)
	if err != nil {
		a.log.Warn("file read failed, assembling without file context",
			"session_id", sessionID, "error", err)
		files = nil
	}

	usage := ContextUsage{
		ConversationHistory: len(recent) > 0,
		UploadedFiles:       len(files) > 0,
		HistoryCount:        len(recent),
		FilesCount:          len(files),
	}

	var conversation strings.Builder
	if len(recent) > 0 {
		conversation.WriteString("\n\n--- Previous Conversation Context ---\n")
		// recent is newest-first; walk backwards for chronological order.
		for i := len(recent) - 1; i >= 0; i-- {
			t := recent[i]
			n := len(recent) - i
			fmt.Fprintf(&conversation, "[%d] User: %s\n", n, t.UserMessage)
			fmt.Fprintf(&conversation, "[%d] Assistant: %s\n\n", n, truncate(t.AIResponse, responsePreviewLimit))
		}
		conversation.WriteString("--- End of Previous Context ---\n\n")
	}

	var fileBlock strings.Builder
	if len(files) > 0 {
		fileBlock.WriteString("\n\n--- Available Files Context ---\n")
		for i, f := range files {
			fmt.Fprintf(&fileBlock, "File %d: %q (uploaded %s)\n", i+1, f.OriginalName, f.UploadedAt.Format(uploadDateLayout))
			if f.Content != "" {
				fmt.Fprintf(&fileBlock, "Content preview: %s\n", truncate(f.Content, filePreviewLimit))
			}
			if analyses := f.Analyses.Data(); len(analyses) > 0 {
				fmt.Fprintf(&fileBlock, "Previous analyses: %d analysis(es) performed\n", len(analyses))
				last := analyses[len(analyses)-1]
				fmt.Fprintf(&fileBlock, "Last analysis: %q - %s\n", last.Prompt, truncate(last.Response, responsePreviewLimit))
			}
			fileBlock.WriteString("\n")
		}
		fileBlock.WriteString("--- End of Files Context ---\n\n")
	}

	if conversation.Len() == 0 && fileBlock.Len() == 0 {
		return message, usage
	}

	prompt := conversation.String() + fileBlock.String() +
		"Current user message: " + message +
		"\n\nPlease respond to the current user message while being aware of our previous conversation and any uploaded files. " +
		"If the user refers to previous messages or files, use the provided context to give a relevant response."
	return prompt, usage
}

// AnalysisContextUsage mirrors ContextUsage for the analyze-file path.
type AnalysisContextUsage struct {
	ConversationHistory bool `json:"conversationHistory"`
	OtherFiles          bool `json:"otherFiles"`
	HistoryCount        int  `json:"historyCount"`
	OtherFilesCount     int  `json:"otherFilesCount"`
}

// BuildAnalysisPrompt builds the prompt for running a request against a
// stored file. The file content gets the large budget; surrounding
// context windows are tightened.
func (a *Assembler) BuildAnalysisPrompt(ctx context.Context, file *UploadedFile, prompt string) (string, AnalysisContextUsage) {
	recent, err := a.repo.ListRecentTurnsDesc(ctx, file.SessionID, analysisHistoryTurns)
	if err != nil {
		a.log.Warn("history read failed, analyzing without conversation context",
			"session_id", file.SessionID, "error", err)
		recent = nil
	}
	others, err := a.repo.ListOtherFilesDesc(ctx, file.SessionID, file.ID, analysisOtherFiles)
	if err != nil {
		a.log.Warn("file read failed, analyzing without other-file context",
			"session_id", file.SessionID, "error", err)
		others = nil
	}

	usage := AnalysisContextUsage{
		ConversationHistory: len(recent) > 0,
		OtherFiles:          len(others) > 0,
		HistoryCount:        len(recent),
		OtherFilesCount:     len(others),
	}

	var conversation strings.Builder
	if len(recent) > 0 {
		conversation.WriteString("\n\n--- Recent Conversation Context ---\n")
		for i := len(recent) - 1; i >= 0; i-- {
			t := recent[i]
			n := len(recent) - i
			fmt.Fprintf(&conversation, "[%d] User: %s\n", n, truncate(t.UserMessage, analysisPreviewLimit))
			fmt.Fprintf(&conversation, "[%d] Assistant: %s\n\n", n, truncate(t.AIResponse, analysisPreviewLimit))
		}
		conversation.WriteString("--- End of Context ---\n\n")
	}

	var otherBlock strings.Builder
	if len(others) > 0 {
		otherBlock.WriteString("\n\n--- Other Files in Session ---\n")
		for i, f := range others {
			fmt.Fprintf(&otherBlock, "File %d: %q (uploaded %s)\n", i+1, f.OriginalName, f.UploadedAt.Format(uploadDateLayout))
			if analyses := f.Analyses.Data(); len(analyses) > 0 {
				fmt.Fprintf(&otherBlock, "  Last analysis: %q\n", analyses[len(analyses)-1].Prompt)
			}
		}
		otherBlock.WriteString("--- End of Other Files ---\n\n")
	}

	content := file.Content
	if len([]rune(content)) > analysisContentLimit {
		content = string([]rune(content)[:analysisContentLimit]) + analysisTruncationNotice
	}

	fileInfo := fmt.Sprintf("File Name: %s\nFile Type: %s\nFile Size: %d bytes\n",
		file.OriginalName, file.Mimetype, file.Size)

	assembled := conversation.String() + otherBlock.String() +
		fmt.Sprintf("Please analyze the following file based on this request: %q\n\n", prompt) +
		fileInfo + "\nFile Content:\n" + content +
		"\n\nPlease provide a comprehensive analysis while being aware of our conversation context and any other files in this session. " +
		"If relevant, reference previous discussions or other files."
	return assembled, usage
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
