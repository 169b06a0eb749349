package clients

const (
	PREDICT_PATH = "/api/predict"
	HEALTH_PATH  = "/healthz"
	USER_AGENT   = "reviewsense-client/1.0 (+https://github.com/spacesedan/reviewsense)"
)
