package github

// contentResponse is the Contents API representation of a file, as returned
// by GET and inside PUT responses. Content is base64 with embedded newlines.
type contentResponse struct {
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// putRequest for PUT /repos/{owner}/{repo}/contents/{path}.
// An absent SHA asserts "create new"; a present SHA asserts "replace exactly
// this version".
type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// putResponse from PUT /repos/{owner}/{repo}/contents/{path}.
type putResponse struct {
	Content *contentResponse `json:"content"`
}

// deleteRequest for DELETE /repos/{owner}/{repo}/contents/{path}.
type deleteRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// errorResponse is the API error body.
type errorResponse struct {
	Message string `json:"message"`
}

// userResponse from GET /user.
type userResponse struct {
	Login string `json:"login"`
}
