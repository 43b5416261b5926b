// Copyright 2024 The Vanadium Authors
// This file is part of the vanadium-sub001 library.
//
// The vanadium-sub001 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The vanadium-sub001 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the vanadium-sub001 library. If not, see <http://www.gnu.org/licenses/>.

package comm

// Command identifies one of the four top-level device commands a host
// issues.
type Command uint8

const (
	CommandGetVersion Command = iota
	CommandRegisterVApp
	CommandStartVApp
	CommandContinue
)

func (c Command) String() string {
	switch c {
	case CommandGetVersion:
		return "GetVersion"
	case CommandRegisterVApp:
		return "RegisterVApp"
	case CommandStartVApp:
		return "StartVApp"
	case CommandContinue:
		return "Continue"
	default:
		return "Command(unknown)"
	}
}

// SideChannelTag identifies one of the side-channel exchanges a device
// may issue while StartVApp is in flight.
type SideChannelTag uint8

const (
	TagGetPage SideChannelTag = iota
	TagCommitPage
	TagCommitPageContent
	TagSendBuffer
	TagReceiveBuffer
)

func (t SideChannelTag) String() string {
	switch t {
	case TagGetPage:
		return "GetPage"
	case TagCommitPage:
		return "CommitPage"
	case TagCommitPageContent:
		return "CommitPageContent"
	case TagSendBuffer:
		return "SendBuffer"
	case TagReceiveBuffer:
		return "ReceiveBuffer"
	default:
		return "SideChannelTag(unknown)"
	}
}
