package twilio

type callResponse struct {
	Sid          string `json:"sid"`
	CallSid      string `json:"CallSid"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	ErrorMessage string `json:"error_message"`
}

func (r *callResponse) callID() string {
	if r.Sid != "" {
		return r.Sid
	}
	return r.CallSid
}

func (r *callResponse) errorText() string {
	if r.Message != "" {
		return r.Message
	}
	return r.ErrorMessage
}
