package eventstream_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals with expected top-level keys", func() {
		event := eventstream.NewEvent(eventstream.EventTypeReferenceRecorded, "u1").
			WithConversation("msteams", "conv-1").
			WithDetail("reason", "conversationUpdate")

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKeyWithValue("event_type", "bridge.reference.recorded"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKeyWithValue("user_id", "u1"))
		Expect(got).To(HaveKeyWithValue("channel_id", "msteams"))
		Expect(got).To(HaveKeyWithValue("conversation_id", "conv-1"))
		Expect(got).To(HaveKeyWithValue("detail", map[string]any{"reason": "conversationUpdate"}))
	})

	It("stamps every event with a unique id", func() {
		a := eventstream.NewEvent(eventstream.EventTypeSessionCreated, "u1")
		b := eventstream.NewEvent(eventstream.EventTypeSessionCreated, "u1")
		Expect(a.EventID).NotTo(Equal(b.EventID))
		Expect(a.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
	})

	It("omits empty optional fields", func() {
		payload, err := json.Marshal(eventstream.NewEvent(eventstream.EventTypeNotificationSent, ""))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).NotTo(ContainSubstring("detail"))
		Expect(string(payload)).NotTo(ContainSubstring("user_id"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).To(MatchError("nil event"))
	})
})
