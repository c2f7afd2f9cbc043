package inbound

import "net/http"

type RequestOTPRequest struct {
	Email string `json:"email"`
}

type RequestOTPResponse struct {
	Status string `json:"status"`
}

func (RequestOTPResponse) Message() string {
	return "OTP has been sent to your email"
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  int    `json:"code"`
}

type VerifyOTPResponse struct {
	Status string `json:"status"`
}

func (VerifyOTPResponse) Message() string {
	return "OTP verified"
}

type PeekLatestOTPResponse struct {
	Code int `json:"code"`
}

func (PeekLatestOTPResponse) StatusCode() int {
	return http.StatusOK
}
