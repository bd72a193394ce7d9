package push

// RegisterRequest accepts a browser PushSubscription as-is, or {kind:"fcm", endpoint:<token>}.
type RegisterRequest struct {
	Kind     string      `json:"kind" validate:"omitempty,oneof=webpush fcm"`
	Endpoint string      `json:"endpoint" validate:"required,max=2048"`
	Keys     BrowserKeys `json:"keys"`
}

type UnregisterRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

type FanoutRequest struct {
	Record *Record `json:"record"`
}

type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
}
