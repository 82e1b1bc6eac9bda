// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package tsparser

import (
	"sync"

	"github.com/q191201771/tunerpsi/pkg/psip"
)

// SyncTsParser 对 TsParser 加锁，用于多个goroutine输入数据的场景
//
// IOutputObserver 的回调在锁内执行，回调中不能再调用 SyncTsParser 的方法
type SyncTsParser struct {
	mu sync.Mutex
	p  *TsParser
}

func NewSyncTsParser(observer IOutputObserver, modOptions ...ModOption) *SyncTsParser {
	return &SyncTsParser{
		p: NewTsParser(observer, modOptions...),
	}
}

func (s *SyncTsParser) FeedTsData(b []byte, offset, length int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.FeedTsData(b, offset, length)
}

func (s *SyncTsParser) StartListening(pid uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.StartListening(pid)
}

func (s *SyncTsParser) ResetDataVersions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.ResetDataVersions()
}

func (s *SyncTsParser) GetMalFormedChannels() []MalFormedChannel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.GetMalFormedChannels()
}

func (s *SyncTsParser) GetIsDvb() bool {
	return s.p.GetIsDvb()
}

func (s *SyncTsParser) GetVctItems() []psip.VctItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.GetVctItems()
}

func (s *SyncTsParser) GetSdtItems() []psip.SdtItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.GetSdtItems()
}

func (s *SyncTsParser) GetEitPids() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.GetEitPids()
}

func (s *SyncTsParser) GetEttPids() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.GetEttPids()
}

func (s *SyncTsParser) GetStat() Stat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.GetStat()
}

func (s *SyncTsParser) UniqueKey() string {
	return s.p.UniqueKey()
}
