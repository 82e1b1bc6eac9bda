// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package tsparser_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/asticode/go-astits"
	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tunerpsi/pkg/psip"
	"github.com/q191201771/tunerpsi/pkg/tsparser"
)

// TestAstitsMuxer 使用第三方的muxer生成只有PAT/PMT的TS流
func TestAstitsMuxer(t *testing.T) {
	buf := &bytes.Buffer{}
	muxer := astits.NewMuxer(context.Background(), buf)
	err := muxer.AddElementaryStream(astits.PMTElementaryStream{
		ElementaryPID: 0x100,
		StreamType:    astits.StreamTypeH264Video,
	})
	assert.Equal(t, nil, err)
	err = muxer.AddElementaryStream(astits.PMTElementaryStream{
		ElementaryPID: 0x101,
		StreamType:    astits.StreamTypeAACAudio,
	})
	assert.Equal(t, nil, err)
	muxer.SetPCRPID(0x100)
	n, err := muxer.WriteTables()
	assert.Equal(t, nil, err)
	assert.Equal(t, buf.Len(), n)

	r := &outputRecorder{}
	p := tsparser.NewTsParser(r)
	p.FeedTsData(buf.Bytes(), 0, buf.Len())

	assert.Equal(t, 1, len(r.pats))
	assert.Equal(t, 1, len(r.pats[0]))
	channels := p.GetMalFormedChannels()
	assert.Equal(t, []tsparser.MalFormedChannel{{
		ProgramNumber: r.pats[0][0].ProgramNumber,
		PmtItems: []psip.PmtItem{
			{StreamType: uint8(astits.StreamTypeH264Video), EsPid: 0x100},
			{StreamType: uint8(astits.StreamTypeAACAudio), EsPid: 0x101},
		},
	}}, channels)
}
