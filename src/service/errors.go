package service

import "errors"

var errEmptyName = errors.New("empty account name")
