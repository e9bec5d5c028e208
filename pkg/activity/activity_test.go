package activity_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/activity"
)

const inboundMessage = `{
	"type": "message",
	"id": "act-1",
	"serviceUrl": "https://smba.trafficmanager.net/emea/",
	"channelId": "msteams",
	"from": {"id": "u1", "name": "Ada"},
	"conversation": {"id": "conv-1"},
	"recipient": {"id": "bot-1", "name": "bridge"},
	"text": "hello",
	"locale": "en-US",
	"channelData": {"tenant": {"id": "t1"}}
}`

var _ = Describe("Activity", func() {
	var inbound activity.Activity

	BeforeEach(func() {
		Expect(json.Unmarshal([]byte(inboundMessage), &inbound)).To(Succeed())
	})

	It("decodes the channel wire format", func() {
		Expect(inbound.Type).To(Equal(activity.TypeMessage))
		Expect(inbound.From.ID).To(Equal("u1"))
		Expect(inbound.Recipient.ID).To(Equal("bot-1"))
		Expect(inbound.Conversation.ID).To(Equal("conv-1"))
		Expect(string(inbound.ChannelData)).To(ContainSubstring("tenant"))
	})

	Describe("GetConversationReference", func() {
		It("captures the user, bot, conversation and routing fields", func() {
			ref := activity.GetConversationReference(&inbound)
			Expect(ref).To(Equal(activity.ConversationReference{
				ActivityID:   "act-1",
				User:         activity.ChannelAccount{ID: "u1", Name: "Ada"},
				Bot:          activity.ChannelAccount{ID: "bot-1", Name: "bridge"},
				Conversation: activity.ConversationAccount{ID: "conv-1"},
				ChannelID:    "msteams",
				Locale:       "en-US",
				ServiceURL:   "https://smba.trafficmanager.net/emea/",
			}))
		})

		It("round-trips through JSON with the channel's field names", func() {
			ref := activity.GetConversationReference(&inbound)
			payload, err := json.Marshal(ref)
			Expect(err).NotTo(HaveOccurred())

			var raw map[string]any
			Expect(json.Unmarshal(payload, &raw)).To(Succeed())
			Expect(raw).To(HaveKey("activityId"))
			Expect(raw).To(HaveKey("serviceUrl"))
			Expect(raw).To(HaveKey("channelId"))

			var back activity.ConversationReference
			Expect(json.Unmarshal(payload, &back)).To(Succeed())
			Expect(back).To(Equal(ref))
		})
	})

	Describe("ApplyConversationReference", func() {
		It("addresses the outbound activity from the bot to the user", func() {
			ref := activity.GetConversationReference(&inbound)
			out := activity.ApplyConversationReference(activity.Text("hi"), ref)

			Expect(out.From.ID).To(Equal("bot-1"))
			Expect(out.Recipient.ID).To(Equal("u1"))
			Expect(out.Conversation.ID).To(Equal("conv-1"))
			Expect(out.ServiceURL).To(Equal(ref.ServiceURL))
			Expect(out.ReplyToID).To(Equal("act-1"))
			Expect(out.Locale).To(Equal("en-US"))
		})

		It("does not set replyToId without an activity id", func() {
			ref := activity.GetConversationReference(&inbound)
			ref.ActivityID = ""
			out := activity.ApplyConversationReference(activity.Text("hi"), ref)
			Expect(out.ReplyToID).To(BeEmpty())
		})
	})
})

var _ = Describe("factories", func() {
	It("builds suggested actions", func() {
		act := activity.Suggested("Pick one", []activity.CardAction{
			{Type: activity.ActionImBack, Title: "Yes", Value: "yes"},
		})
		Expect(act.Type).To(Equal(activity.TypeMessage))
		Expect(act.Text).To(Equal("Pick one"))
		Expect(act.SuggestedActions.Actions).To(HaveLen(1))
	})

	It("builds hero card attachments", func() {
		act := activity.WithAttachment(activity.HeroCardAttachment(activity.HeroCard{Title: "Docs"}))
		Expect(act.Attachments).To(HaveLen(1))
		Expect(act.Attachments[0].ContentType).To(Equal(activity.ContentTypeHeroCard))

		payload, err := json.Marshal(act)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).To(ContainSubstring(`"content":{"title":"Docs"}`))
	})

	It("builds trace activities", func() {
		act := activity.Trace("OnTurnError Trace", "boom", "https://www.botframework.com/schemas/error", "TurnError")
		Expect(act.Type).To(Equal(activity.TypeTrace))
		Expect(act.Value).To(Equal("boom"))
		Expect(act.Timestamp).NotTo(BeNil())
	})

	It("builds continuation events from a reference", func() {
		ref := activity.ConversationReference{
			ActivityID:   "act-1",
			User:         activity.ChannelAccount{ID: "u1"},
			Bot:          activity.ChannelAccount{ID: "bot-1"},
			Conversation: activity.ConversationAccount{ID: "conv-1"},
			ChannelID:    "emulator",
			ServiceURL:   "http://localhost:5000",
		}
		act := activity.ContinuationActivity(ref)
		Expect(act.Type).To(Equal(activity.TypeEvent))
		Expect(act.Name).To(Equal(activity.ContinueConversationEvent))
		Expect(act.From.ID).To(Equal("u1"))
		Expect(act.Recipient.ID).To(Equal("bot-1"))
		Expect(act.ID).NotTo(BeEmpty())
		Expect(*act.RelatesTo).To(Equal(ref))
	})
})
