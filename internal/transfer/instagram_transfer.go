package transfer

type InstagramProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture_url"`
}

type InstagramContainerResponse struct {
	ID string `json:"id"`
}

type InstagramPublishResponse struct {
	ID string `json:"id"`
}

type InstagramPermalink struct {
	Permalink string `json:"permalink"`
}

type InstagramRefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
