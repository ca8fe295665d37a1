package types

import (
	"time"

	"github.com/neboloop/runbook/internal/chat"
	"github.com/neboloop/runbook/internal/db"
	"github.com/neboloop/runbook/internal/documents"
	"github.com/neboloop/runbook/internal/markdown"
)

func unixTime(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

func FromRunbook(rb db.Runbook) Runbook {
	return Runbook{
		Id:          rb.ID,
		Title:       rb.Title,
		Description: rb.Description,
		Status:      rb.Status,
		CreatedBy:   rb.CreatedBy,
		CreatedAt:   unixTime(rb.CreatedAt),
		UpdatedAt:   unixTime(rb.UpdatedAt),
	}
}

func FromRunbooks(rbs []db.Runbook) []Runbook {
	out := make([]Runbook, 0, len(rbs))
	for _, rb := range rbs {
		out = append(out, FromRunbook(rb))
	}
	return out
}

// FromInteraction converts a stored interaction, rendering the answer to HTML.
func FromInteraction(ci db.ChatInteraction) Interaction {
	return Interaction{
		Id:                 ci.ID,
		RunbookId:          ci.RunbookID,
		Prompt:             ci.Prompt,
		Answer:             ci.Answer,
		AnswerHtml:         markdown.Render(ci.Answer),
		UserName:           ci.UserName,
		AssistantName:      ci.AssistantName,
		UserAvatarUrl:      ci.UserAvatarUrl,
		AssistantAvatarUrl: ci.AssistantAvatarUrl,
		CreatedAt:          unixTime(ci.CreatedAt),
	}
}

func FromInteractions(cis []db.ChatInteraction) []Interaction {
	out := make([]Interaction, 0, len(cis))
	for _, ci := range cis {
		out = append(out, FromInteraction(ci))
	}
	return out
}

func FromState(st chat.State) ChatStateResponse {
	resp := ChatStateResponse{
		Username:     st.Username,
		Prompt:       st.Prompt,
		RunbookId:    st.RunbookID,
		Runbooks:     FromRunbooks(st.Runbooks),
		Interactions: FromInteractions(st.Interactions),
		Loading:      st.Loading,
		Phase:        st.Phase.String(),
	}
	if st.Notification != nil {
		resp.Notification = &Notification{Level: st.Notification.Level, Message: st.Notification.Message}
	}
	return resp
}

func FromDocument(d documents.Document) Document {
	return Document{
		Id:          d.ID,
		Url:         d.Path,
		Title:       d.Title,
		ContentType: d.ContentType,
		Parsed:      d.Parsed(),
		CreatedAt:   unixTime(d.CreatedAt),
		UpdatedAt:   unixTime(d.UpdatedAt),
	}
}

func FromDocuments(docs []documents.Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromDocument(d))
	}
	return out
}

// FromDocumentDetail includes the stored content and its rendered HTML.
func FromDocumentDetail(d documents.Document) DocumentDetail {
	return DocumentDetail{
		Document:      FromDocument(d),
		Content:       d.Content,
		ParsedContent: d.ParsedContent,
		Html:          markdown.Render(d.Text()),
	}
}
