package session

import (
	"github.com/haivivi/framegear/pkg/framemsg"
)

func (s *Session) register() {
	s.router.Register(s.types.Reply, framemsg.HandlerFunc(s.handleReply))
	s.router.Register(s.types.ImageChunk, framemsg.HandlerFunc(s.handleImageChunk))
	s.router.Register(s.types.ImageEnd, framemsg.HandlerFunc(s.handleImageEnd))
	s.router.Register(s.types.Audio, framemsg.HandlerFunc(s.handleAudio))
	s.router.SetPrintHandler(s.print)
}

// handleReply prints a command reply and releases the waiting console.
func (s *Session) handleReply(payload []byte) error {
	s.out.Write(payload)
	s.replied.Set()
	return nil
}

func (s *Session) handleImageChunk(payload []byte) error {
	n := s.image.Append(payload)
	s.logger.Debug("image chunk", "bytes", len(payload), "total", n)
	return nil
}

func (s *Session) handleImageEnd([]byte) error {
	n := s.image.Len()
	path, err := s.image.Finish()
	if err != nil {
		return err
	}
	s.logger.Info("image saved", "path", path, "bytes", n)
	s.printf("Image saved to %s\n", path)
	return nil
}

func (s *Session) handleAudio(payload []byte) error {
	if s.archive != nil {
		if _, err := s.archive.Write(payload); err != nil {
			return err
		}
	}
	s.listener.Feed(payload)
	return nil
}

// print shows Lua print output of the device.
func (s *Session) print(text string) {
	s.printf("%s\n", text)
}
