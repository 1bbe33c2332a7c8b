package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidDateFormat, "invalid date")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidDateFormat, err.Code)
	suite.Equal("invalid date", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeEmptyResult, "no data returned for %s", "GC=F")
	suite.NotNil(err)
	suite.Equal(ErrCodeEmptyResult, err.Code)
	suite.Equal("no data returned for GC=F", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeProviderFetchFailed, "fetch failed", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeProviderFetchFailed, err.Code)
	suite.Equal("fetch failed", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeExportFailed, cause, "failed to write %s", "out.csv")
	suite.NotNil(err)
	suite.Equal(ErrCodeExportFailed, err.Code)
	suite.Equal("failed to write out.csv", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidDateFormat, "invalid date")
	suite.Equal("[100] invalid date", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeProviderFetchFailed, "fetch failed", cause)
	suite.Equal("[200] fetch failed: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeProviderFetchFailed, "fetch failed", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	inner := New(ErrCodeEmptyResult, "no data")
	outer := fmt.Errorf("asset failed: %w", inner)
	suite.Equal(ErrCodeEmptyResult, GetCode(outer))
}

func (suite *ErrorTestSuite) TestGetCodePlainError() {
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeExportFailed, "write failed")
	suite.True(HasCode(err, ErrCodeExportFailed))
	suite.False(HasCode(err, ErrCodeEmptyResult))
}
