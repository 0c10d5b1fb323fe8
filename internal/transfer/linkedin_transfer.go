package transfer

type LinkedinUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

type LinkedinShareText struct {
	Text string `json:"text"`
}

type LinkedinShareContent struct {
	ShareCommentary    LinkedinShareText `json:"shareCommentary"`
	ShareMediaCategory string            `json:"shareMediaCategory"`
}

type LinkedinPostRequest struct {
	Author          string                          `json:"author"`
	LifecycleState  string                          `json:"lifecycleState"`
	SpecificContent map[string]LinkedinShareContent `json:"specificContent"`
	Visibility      map[string]string               `json:"visibility"`
}

type LinkedinPostResponse struct {
	ID string `json:"id"`
}

type LinkedinErrorResponse struct {
	Message        string `json:"message"`
	ServiceErrCode int    `json:"serviceErrorCode"`
	Status         int    `json:"status"`
}
