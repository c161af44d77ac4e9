package siteconfig

import "errors"

var (
	ErrNavKeyRequired  = errors.New("siteconfig: navigation entry key is required")
	ErrDuplicateNavKey = errors.New("siteconfig: duplicate navigation key")
)
