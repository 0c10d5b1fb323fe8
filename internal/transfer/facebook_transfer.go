package transfer

type FacebookPage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

type FacebookPageList struct {
	Data []FacebookPage `json:"data"`
}

type FacebookIGAccount struct {
	ID string `json:"id"`
}

type FacebookPageDetail struct {
	ID                       string             `json:"id"`
	Name                     string             `json:"name"`
	AccessToken              string             `json:"access_token"`
	InstagramBusinessAccount *FacebookIGAccount `json:"instagram_business_account"`
}

type FacebookPostResponse struct {
	ID string `json:"id"`
}

type FacebookError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type FacebookErrorResponse struct {
	Error FacebookError `json:"error"`
}

type FacebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
