package stt_test

import (
	"github.com/prasetyowira/notulis/adapters/stt"
	"github.com/prasetyowira/notulis/domain/repositories"
)

var _ repositories.Transcriber = &stt.GoogleSpeechToText{}
