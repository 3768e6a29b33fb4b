package planglist

import (
	"net/http"

	"github.com/programme-lv/contest-portal/srvcerror"
)

const ErrCodeInvalidProgLang = "invalid_language"

func ErrInvalidProgLang() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidProgLang,
		"Unsupported programming language",
	).SetHttpStatusCode(http.StatusBadRequest)
}
