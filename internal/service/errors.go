package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")

	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionExists   = errors.New("connection already exists")
	ErrIncomeNotFound     = errors.New("income not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrInvalidInput       = errors.New("invalid input")
)
