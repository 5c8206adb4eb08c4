package models

type (
	PrintJob struct {
		Ref         string `json:"ref"`
		StatusURL   string `json:"statusURL"`
		DownloadURL string `json:"downloadURL"`
	}

	PrintStatus struct {
		Done        bool   `json:"done"`
		Status      string `json:"status"`
		Error       string `json:"error,omitempty"`
		ElapsedTime int64  `json:"elapsedTime"`
		WaitingTime int64  `json:"waitingTime"`
		DownloadURL string `json:"downloadURL"`
	}
)
