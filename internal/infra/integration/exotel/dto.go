package exotel

// Calls/connect response. The call identifier shows up in different spots
// depending on API version, so every known location is mapped.
type callResponse struct {
	Call          *callDetails   `json:"Call"`
	Sid           string         `json:"Sid"`
	CallSid       string         `json:"CallSid"`
	Message       string         `json:"message"`
	ErrorMessage  string         `json:"error"`
	RestException *restException `json:"RestException"`
}

type callDetails struct {
	Sid     string `json:"Sid"`
	CallSid string `json:"CallSid"`
}

type restException struct {
	Message string `json:"Message"`
}

func (r *callResponse) callID() string {
	if r.Call != nil {
		if r.Call.Sid != "" {
			return r.Call.Sid
		}
		if r.Call.CallSid != "" {
			return r.Call.CallSid
		}
	}
	if r.Sid != "" {
		return r.Sid
	}
	return r.CallSid
}

func (r *callResponse) errorMessage() string {
	if r.Message != "" {
		return r.Message
	}
	if r.RestException != nil && r.RestException.Message != "" {
		return r.RestException.Message
	}
	return r.ErrorMessage
}
