// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"encoding/json"
	"os"

	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/naza/pkg/nazajson"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tunerpsi/pkg/base"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
)

const (
	InputTypeFile = "file"
	InputTypeUdp  = "udp"
	InputTypeSrt  = "srt"

	SrtModeCaller   = "caller"
	SrtModeListener = "listener"
)

type Config struct {
	Log        nazalog.Option `json:"log"`
	Input      InputConfig    `json:"input"`
	Dvb        bool           `json:"dvb"`
	VerifyCrc  bool           `json:"verify_crc"`
	DumpJson   bool           `json:"dump_json"`   // 回调结果以json行的形式输出到stdout
	RecordFile string         `json:"record_file"` // 不为空时，把输入的TS流原样落盘
	CrossCheck bool           `json:"cross_check"` // 只对file输入有效，结束后用astits再解析一遍PMT做对比
}

type InputConfig struct {
	Type          string `json:"type"`
	File          string `json:"file"`
	UdpAddr       string `json:"udp_addr"`
	SrtHost       string `json:"srt_host"`
	SrtPort       int    `json:"srt_port"`
	SrtMode       string `json:"srt_mode"`
	ReadChunkSize int    `json:"read_chunk_size"`
}

func LoadConf(confFile string) (*Config, error) {
	rawContent, err := os.ReadFile(confFile)
	if err != nil {
		return nil, err
	}
	return ParseConf(rawContent)
}

func ParseConf(rawContent []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(rawContent, &config); err != nil {
		return nil, nazaerrors.Wrap(err)
	}

	j, err := nazajson.New(rawContent)
	if err != nil {
		return nil, nazaerrors.Wrap(err)
	}

	// 检查配置必须项
	switch config.Input.Type {
	case InputTypeFile:
		if config.Input.File == "" {
			return nil, nazaerrors.Wrap(base.ErrConfInputAddr)
		}
	case InputTypeUdp:
		if config.Input.UdpAddr == "" {
			return nil, nazaerrors.Wrap(base.ErrConfInputAddr)
		}
	case InputTypeSrt:
		if config.Input.SrtPort == 0 {
			return nil, nazaerrors.Wrap(base.ErrConfInputAddr)
		}
	default:
		return nil, nazaerrors.Wrap(base.NewErrConfInputType(config.Input.Type))
	}

	// 配置不存在时，设置默认值
	if !j.Exist("log.level") {
		config.Log.Level = nazalog.LevelDebug
	}
	if !j.Exist("log.filename") {
		config.Log.Filename = "./logs/tspsi.log"
	}
	if !j.Exist("log.is_to_stdout") {
		config.Log.IsToStdout = true
	}
	if !j.Exist("log.is_rotate_daily") {
		config.Log.IsRotateDaily = true
	}
	if !j.Exist("log.short_file_flag") {
		config.Log.ShortFileFlag = true
	}
	if !j.Exist("log.assert_behavior") {
		config.Log.AssertBehavior = nazalog.AssertError
	}
	if !j.Exist("verify_crc") {
		config.VerifyCrc = true
	}
	if !j.Exist("input.read_chunk_size") {
		config.Input.ReadChunkSize = mpegts.PacketSize * 7 * 64
	}
	if !j.Exist("input.srt_host") {
		config.Input.SrtHost = "0.0.0.0"
	}
	if !j.Exist("input.srt_mode") {
		config.Input.SrtMode = SrtModeListener
	}

	// 按整packet读取
	if config.Input.ReadChunkSize < mpegts.PacketSize {
		config.Input.ReadChunkSize = mpegts.PacketSize
	}
	config.Input.ReadChunkSize = config.Input.ReadChunkSize / mpegts.PacketSize * mpegts.PacketSize

	return &config, nil
}
