package sitevisit

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrSiteVisitNotFound = apperror.New(apperror.KindNotFound, "site visit not found")
	ErrExpenseNotFound   = apperror.New(apperror.KindNotFound, "expense not found")
	ErrSiteVisitExists   = apperror.New(apperror.KindAlreadyMarked, "attendance already has a site visit")
	ErrNotEditable       = apperror.New(apperror.KindNotEditable, "site visit claim can only be edited in draft")
	ErrEmptyClaim        = apperror.New(apperror.KindEmptyClaim, "site visit claim has no expense items")
	ErrMissingReason     = apperror.New(apperror.KindMissingReason, "rejection reason is required")
	ErrNotOwner          = apperror.New(apperror.KindForbidden, "site visit belongs to another employee")
)
