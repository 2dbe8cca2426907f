// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package normalizer

import (
	"github.com/go-viper/mapstructure/v2"
)

// participantView is the subset of payload.object.participant we read.
// Time fields stay untyped so the timestamp package can interpret them.
type participantView struct {
	UserName  string `json:"user_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	JoinTime  any    `json:"join_time"`
	LeaveTime any    `json:"leave_time"`
}

// recordingFileView is the subset of one recording_files entry we read.
type recordingFileView struct {
	RecordingType  string `json:"recording_type"`
	RecordingStart any    `json:"recording_start"`
	RecordingEnd   any    `json:"recording_end"`
}

// decodeView decodes a loosely typed object into a view. Scalars are coerced
// to the field type; fields that cannot be coerced are left empty and
// reported in the returned error while the rest of the view is kept.
func decodeView(input map[string]any, out any) error {
	config := mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
