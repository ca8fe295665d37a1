package types

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Auth

type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	Username  string `json:"username"`
}

type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	DevMode       bool   `json:"devMode"`
}

// Chat

type Runbook struct {
	Id          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type Interaction struct {
	Id                 int64  `json:"id"`
	RunbookId          int64  `json:"runbookId"`
	Prompt             string `json:"prompt"`
	Answer             string `json:"answer"`
	AnswerHtml         string `json:"answerHtml"`
	UserName           string `json:"userName"`
	AssistantName      string `json:"assistantName"`
	UserAvatarUrl      string `json:"userAvatarUrl"`
	AssistantAvatarUrl string `json:"assistantAvatarUrl"`
	CreatedAt          string `json:"createdAt"`
}

type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type ChatStateResponse struct {
	Username     string        `json:"username"`
	Prompt       string        `json:"prompt"`
	RunbookId    int64         `json:"runbookId"`
	Runbooks     []Runbook     `json:"runbooks"`
	Interactions []Interaction `json:"interactions"`
	Loading      bool          `json:"loading"`
	Phase        string        `json:"phase"`
	Notification *Notification `json:"notification,omitempty"`
}

type SetPromptRequest struct {
	Prompt string `json:"prompt"`
}

type SubmitRequest struct {
	Prompt *string `json:"prompt,omitempty"`
}

type SubmitResponse struct {
	Submitted   bool         `json:"submitted"`
	Allowed     bool         `json:"allowed"`
	Reason      string       `json:"reason,omitempty"`
	Message     string       `json:"message,omitempty"`
	Interaction *Interaction `json:"interaction,omitempty"`
}

type SearchRequest struct {
	Filter string `form:"filter" json:"-"`
}

type InteractionsResponse struct {
	Interactions []Interaction `json:"interactions"`
}

// Runbooks

type RunbookRequest struct {
	Id int64 `path:"id" json:"-"`
}

type ListRunbooksResponse struct {
	Runbooks []Runbook `json:"runbooks"`
	ActiveId int64     `json:"activeId"`
}

type RunbookResponse struct {
	Runbook Runbook `json:"runbook"`
}

type ExportResponse struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// Documents

type Document struct {
	Id          string `json:"id"`
	Url         string `json:"url"`
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Parsed      bool   `json:"parsed"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type DocumentDetail struct {
	Document
	Content       string `json:"content"`
	ParsedContent string `json:"parsedContent,omitempty"`
	Html          string `json:"html"`
}

type AddDocumentRequest struct {
	Url string `json:"url"`
}

type DocumentRequest struct {
	Id string `path:"id" json:"-"`
}

type ListDocumentsResponse struct {
	Documents []Document `json:"documents"`
}

type DocumentResponse struct {
	Document DocumentDetail `json:"document"`
}
