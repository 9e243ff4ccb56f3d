package usecase

import (
	"fmt"
	"strings"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// The reply composer is a pure function of the turn's inputs. Branch
// order is fixed; the optional wording override upstream may replace
// the surface text but never the branch choice.

// ReplyInput everything one turn's reply depends on
type ReplyInput struct {
	Intent           entity.Intent
	Profile          *entity.Profile
	Decision         ConversationDecision
	Blueprint        ScenarioBlueprint
	Merchants        []entity.MerchantSuggestion
	Products         []entity.ProductSuggestion
	Draft            *entity.Draft
	CreatedOrder     *entity.Order
	ConfirmFromDraft bool
	LanguageSwitched bool
	RecentContext    string
	Language         string // "ar" or "en"
	Seed             string
}

// FormatIqd renders an amount with thousands separators, e.g. "15,000 IQD"
func FormatIqd(amount int) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	sign := ""
	if negative {
		sign = "-"
	}
	return sign + strings.Join(parts, ",") + " IQD"
}

func pick(lang, arText, enText string) string {
	if lang == "en" {
		return enText
	}
	return arText
}

func pickVariant(variants []string, seed string) string {
	return variants[simpleHash(seed)%len(variants)]
}

// ComposeReply walks the fixed branch order and returns the first
// matching branch's text.
func ComposeReply(in ReplyInput) string {
	lang := in.Language
	if lang != "en" {
		lang = "ar"
	}

	if in.CreatedOrder != nil && in.ConfirmFromDraft {
		return pick(lang,
			fmt.Sprintf("تم. ثبتنا طلبك #%d من %s بمجموع %s. تكدر تتابعه من صفحة طلباتي.",
				in.CreatedOrder.ID, in.CreatedOrder.MerchantName, FormatIqd(in.CreatedOrder.TotalAmount)),
			fmt.Sprintf("Done. Order #%d from %s is confirmed with a total of %s. You can track it under My Orders.",
				in.CreatedOrder.ID, in.CreatedOrder.MerchantName, FormatIqd(in.CreatedOrder.TotalAmount)))
	}

	if in.LanguageSwitched {
		if lang == "en" {
			return "Sure, switching to English. Tell me what you feel like eating and I will line up the best options."
		}
		return "تمام، رجعنا للعربي. كلي شتحب تاكل وأرتبلك أحسن الخيارات."
	}

	if in.Intent.SupportIntent {
		return composeSupportReply(in, lang)
	}

	if in.Intent.OffTopicIntent || in.Intent.SmallTalkType != entity.SmallTalkNone {
		return composeSmallTalkReply(in, lang)
	}

	if in.Decision.Mode == ModeDiscovery {
		return composeDiscoveryReply(in, lang)
	}

	if in.Decision.Mode == ModeSpecialized {
		return composeSpecializedReply(in, lang)
	}

	if in.Draft != nil {
		return composeDraftReply(in, lang)
	}

	if len(in.Products) == 0 {
		return pick(lang,
			"هسه ما لگيت خيار قوي يناسبك. حدد نوع الأكل أو ميزانية بالدينار وأنا أضبطها.",
			"I could not find a strong match yet. Tell me the food type or a budget in IQD and I will tune it.")
	}

	return composeRankedReply(in, lang)
}

func composeSupportReply(in ReplyInput, lang string) string {
	opener := in.Blueprint.OpenerAr
	if lang == "en" {
		opener = in.Blueprint.OpenerEn
	}
	return pick(lang,
		opener+" خبرني رقم الطلب أو اسم المطعم وشنو صار بالضبط حتى أتابعها فوراً.",
		opener+" Share the order number or the restaurant name and what exactly happened so I can follow up right away.")
}

var offTopicSnippetsAr = map[entity.OffTopicTheme][]string{
	entity.OffTopicWeather: {
		"الجو اليوم يتقلب، فالأحسن نختار شي قريب وسريع.",
		"مادام الجو هيچ، خلي الطلب يكون من مكان قريب.",
	},
	entity.OffTopicJoke: {
		"نكتة سريعة: الدايت دائماً يبدي باچر :)",
		"أضحكك بعدين، بس أول شي ناكل زين :)",
	},
	entity.OffTopicIdentity: {
		"آني مساعد BestOffer، أرتبلك المتاجر والمنتجات حسب طلبك.",
		"شغلي أساعدك تختار وتطلب بدون وجع راس.",
	},
	entity.OffTopicMood: {
		"آني تمام، وياك خطوة بخطوة لحد ما يثبت طلبك.",
		"كلش زين، وجاهز أرتبلك شي يعدل المزاج.",
	},
	entity.OffTopicGeneral: {
		"أگدر أحچي وياك، بس شغلي الأساسي خدمة الطلبات.",
		"حاضر للسوالف، بس خل نرجع للأكل بعد شوية.",
	},
}

var offTopicSnippetsEn = map[entity.OffTopicTheme][]string{
	entity.OffTopicWeather: {
		"The weather keeps changing, so something nearby and fast is the safer pick.",
		"With this weather, let us keep the order close by.",
	},
	entity.OffTopicJoke: {
		"Quick one: the diet always starts tomorrow :)",
		"Jokes later, good food first :)",
	},
	entity.OffTopicIdentity: {
		"I am the BestOffer assistant. I rank stores and products around what you ask for.",
		"My job is helping you pick and order without the headache.",
	},
	entity.OffTopicMood: {
		"I am doing great, and I am with you step by step until your order is set.",
		"All good here, ready to line up something that fixes the mood.",
	},
	entity.OffTopicGeneral: {
		"Happy to chat, but my main job is getting your order right.",
		"We can talk, though food is where I really shine.",
	},
}

func composeSmallTalkReply(in ReplyInput, lang string) string {
	var intro string
	switch {
	case in.Intent.SmallTalkType == entity.SmallTalkGreeting:
		intro = pick(lang, "هلا بيك، نورتنا.", "Hello! Great to see you.")
	case in.Intent.SmallTalkType == entity.SmallTalkThanks:
		intro = pick(lang, "تدلل، هذا واجبنا.", "Anytime, that is what I am here for.")
	default:
		theme := in.Intent.OffTopicTheme
		if theme == entity.OffTopicNone {
			theme = entity.OffTopicGeneral
		}
		snippets := offTopicSnippetsAr[theme]
		if lang == "en" {
			snippets = offTopicSnippetsEn[theme]
		}
		intro = pickVariant(snippets, string(theme)+"|"+in.Seed)
	}

	var hint string
	if len(in.Merchants) > 0 {
		hint = pick(lang,
			fmt.Sprintf("أقرب خيار يناسبك هسه: %s.", in.Merchants[0].MerchantName),
			fmt.Sprintf("Closest match for you right now: %s.", in.Merchants[0].MerchantName))
	} else {
		hint = pick(lang,
			"من تحدد طلبك، أرتبلك أفضل الخيارات فوراً.",
			"Once you tell me what you want, I will line up the best options right away.")
	}

	refocus := composeRefocusQuestion(in, lang)
	return intro + " " + hint + " " + refocus
}

func composeRefocusQuestion(in ReplyInput, lang string) string {
	switch {
	case in.Intent.AudienceType == entity.AudienceGroup:
		return pick(lang,
			"ممتاز، عدكم ضيوف. تريد سلة جاهزة لعدد أكبر؟",
			"Nice, you have guests. Want a ready basket sized for a bigger group?")
	case in.Intent.AudienceType == entity.AudienceFamily:
		return pick(lang,
			"تمام، للعائلة. تحب خيارات تشبع أكثر بسعر مناسب؟",
			"Got it, for the family. Want filling options at a fair price?")
	case len(in.Intent.CategoryHints) == 0:
		return pick(lang,
			"شنو تحب هسه؟ برغر، بيتزا، مشاوي، لو شي خفيف؟",
			"What are you in the mood for: burgers, pizza, grills, or something light?")
	case in.Intent.BudgetIqd == 0 && in.Profile.PricePreference != "premium":
		return pick(lang,
			"حددلي ميزانية تقريبية بالدينار حتى يكون الترتيب أدق.",
			"Give me a rough budget in IQD so the ranking gets sharper.")
	case !in.Intent.OrderIntent:
		return pick(lang,
			"تريد أسويلك سلة جاهزة هسه؟",
			"Want me to build a ready basket for you now?")
	}
	return pick(lang,
		"قبل التثبيت، تحب أزيد أو أشيل شي؟",
		"Before confirming, should I add or remove anything?")
}

// composeDiscoveryReply scenario opener + digest of what is already
// known + the next slot question.
func composeDiscoveryReply(in ReplyInput, lang string) string {
	opener := in.Blueprint.OpenerAr
	if lang == "en" {
		opener = in.Blueprint.OpenerEn
	}

	digest := composeSlotDigest(&in.Profile.Model, lang)
	question := composeRefocusQuestion(in, lang)
	if in.Decision.MissingSlot != "" {
		question = PickScenarioQuestion(in.Decision.MissingSlot, lang, in.Seed)
	}

	if digest == "" {
		return opener + " " + question
	}
	return opener + " " + digest + " " + question
}

func composeSlotDigest(model *entity.ConversationModel, lang string) string {
	var known []string
	if model.Cuisine != "" {
		known = append(known, pick(lang, "النوع: "+model.Cuisine, "type: "+model.Cuisine))
	}
	if model.BudgetIqd > 0 {
		known = append(known, pick(lang, "الميزانية: "+FormatIqd(model.BudgetIqd), "budget: "+FormatIqd(model.BudgetIqd)))
	} else if model.BudgetLevel != "" {
		known = append(known, pick(lang, "الميزانية: "+model.BudgetLevel, "budget: "+model.BudgetLevel))
	}
	if model.MealType != "" {
		known = append(known, pick(lang, "الوجبة: "+model.MealType, "meal: "+model.MealType))
	}
	if model.AudienceType != "" {
		known = append(known, pick(lang, "الطلب: "+model.AudienceType, "for: "+model.AudienceType))
	}
	if len(known) == 0 {
		return ""
	}
	return pick(lang,
		"لحد الآن مسجل عندي ("+strings.Join(known, "، ")+").",
		"So far I have ("+strings.Join(known, ", ")+").")
}

func composeSpecializedReply(in ReplyInput, lang string) string {
	opener := in.Blueprint.OpenerAr
	if lang == "en" {
		opener = in.Blueprint.OpenerEn
	}

	switch {
	case in.Intent.Primary == entity.IntentOffers:
		return opener + " " + composeOffersBody(in, lang)
	case in.Intent.Primary == entity.IntentDiscoverNew:
		return opener + " " + composeDiscoverBody(in, lang)
	case in.Intent.Primary == entity.IntentEvaluate || in.Intent.ComparisonIntent:
		return opener + " " + composeEvaluateBody(in, lang)
	}
	return opener + " " + composeRefocusQuestion(in, lang)
}

func composeOffersBody(in ReplyInput, lang string) string {
	var lines []string
	for _, product := range in.Products {
		if product.OfferLabel == "" && product.DiscountedPrice == 0 {
			continue
		}
		label := product.OfferLabel
		if label == "" {
			label = FormatIqd(product.EffectivePrice)
		}
		lines = append(lines, fmt.Sprintf("%s (%s) — %s", product.ProductName, product.MerchantName, label))
		if len(lines) == 3 {
			break
		}
	}
	if len(lines) == 0 {
		return pick(lang,
			"ماكو عروض قوية تطابق ذوقك هسه، بس أگدر أرتبلك أفضل قيمة مقابل السعر. تحب؟",
			"No strong offers match your taste right now, but I can rank by best value for money. Interested?")
	}
	return pick(lang,
		"هاي أقوى العروض إلك: "+strings.Join(lines, " | ")+". أي واحد يجذبك؟",
		"Top offers for you: "+strings.Join(lines, " | ")+". Which one catches your eye?")
}

func composeDiscoverBody(in ReplyInput, lang string) string {
	if len(in.Merchants) == 0 {
		return pick(lang,
			"حدد نوع الأكل وأطلعلك أماكن ما جربتها قبل.",
			"Tell me the cuisine and I will surface places you have not tried yet.")
	}
	var names []string
	for index := len(in.Merchants) - 1; index >= 0 && len(names) < 3; index-- {
		names = append(names, in.Merchants[index].MerchantName)
	}
	return pick(lang,
		"جرب هاي الأماكن، تبدل الجو: "+strings.Join(names, "، ")+". أي واحد يثير فضولك؟",
		"Try these for a change: "+strings.Join(names, ", ")+". Which one makes you curious?")
}

func composeEvaluateBody(in ReplyInput, lang string) string {
	if len(in.Merchants) == 0 {
		return pick(lang,
			"سميلي المطعم أو المنتج وأعطيك تقييم صريح بالأرقام.",
			"Name the place or product and I will give you a frank, numbers-based read.")
	}
	top := in.Merchants[0]
	return pick(lang,
		fmt.Sprintf("%s تقييمه %.1f من 5 وعنده %d طلب مكتمل — رقم يطمن. تريد مقارنة ويا غيره؟",
			top.MerchantName, top.AvgRating, top.CompletedOrders),
		fmt.Sprintf("%s holds %.1f out of 5 across %d completed orders, which is reassuring. Want a head-to-head with another place?",
			top.MerchantName, top.AvgRating, top.CompletedOrders))
}

func composeDraftReply(in ReplyInput, lang string) string {
	itemText := pick(lang, "مواد مرتبة", "a curated set of items")
	if len(in.Draft.Items) > 0 {
		first := in.Draft.Items[0]
		itemText = fmt.Sprintf("%s x%d", first.ProductName, first.Quantity)
	}
	context := ""
	if in.RecentContext != "" {
		context = in.RecentContext + " "
	}
	return context + pick(lang,
		fmt.Sprintf("سويتلك سلة جاهزة من %s تضم %s بمجموع %s. إذا كلشي تمام اضغط تأكيد، وإذا تريد تغيير كلي هسه.",
			in.Draft.MerchantName, itemText, FormatIqd(in.Draft.TotalAmount)),
		fmt.Sprintf("I built a ready basket from %s with %s, totalling %s. Hit confirm if it looks right, or tell me what to change.",
			in.Draft.MerchantName, itemText, FormatIqd(in.Draft.TotalAmount)))
}

func composeReasonPhrases(in ReplyInput, lang string) []string {
	var reasons []string
	if in.Intent.WantsCheap {
		reasons = append(reasons, pick(lang, "ركزت على الأرخص", "focused on the cheapest"))
	}
	if in.Intent.WantsTopRated {
		reasons = append(reasons, pick(lang, "ركزت على أعلى تقييم", "focused on top ratings"))
	}
	if in.Intent.WantsFreeDelivery {
		reasons = append(reasons, pick(lang, "التوصيل المجاني دخل بالأولوية", "free delivery got priority"))
	}
	if len(in.Intent.CategoryHints) > 0 {
		reasons = append(reasons, pick(lang, "حددت نوع المطلوب", "matched your requested type"))
	}
	if in.Intent.WantsFast {
		reasons = append(reasons, pick(lang, "فضلت أسرع توصيل", "preferred the fastest delivery"))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, pick(lang, "استخدمت تاريخ طلباتك وسوق اليوم", "used your order history and today's market"))
	}
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	return reasons
}

func composeMerchantCard(m entity.MerchantSuggestion, lang string) string {
	priceBand := FormatIqd(m.MinPrice)
	if m.MaxPrice > m.MinPrice {
		priceBand = FormatIqd(m.MinPrice) + " - " + FormatIqd(m.MaxPrice)
	}
	fee := pick(lang, "توصيل "+FormatIqd(1000), "delivery "+FormatIqd(1000))
	if m.HasFreeDelivery {
		fee = pick(lang, "توصيل مجاني", "free delivery")
	}
	eta := ""
	if m.AvgDeliveryMins > 0 {
		eta = pick(lang,
			fmt.Sprintf("، يوصل بحدود %.0f دقيقة", m.AvgDeliveryMins),
			fmt.Sprintf(", about %.0f min", m.AvgDeliveryMins))
	}
	return pick(lang,
		fmt.Sprintf("%s (%s، تقييم %.1f%s، %s)", m.MerchantName, priceBand, m.AvgRating, eta, fee),
		fmt.Sprintf("%s (%s, rated %.1f%s, %s)", m.MerchantName, priceBand, m.AvgRating, eta, fee))
}

func composeRankedReply(in ReplyInput, lang string) string {
	var cards []string
	for index, merchant := range in.Merchants {
		if index == 3 {
			break
		}
		cards = append(cards, composeMerchantCard(merchant, lang))
	}
	reasons := strings.Join(composeReasonPhrases(in, lang), " | ")
	question := composeRefocusQuestion(in, lang)

	context := ""
	if in.RecentContext != "" {
		context = in.RecentContext + " "
	}
	return context + pick(lang,
		"رتبت الخيارات حسب طلبك. المتاجر المفضلة: "+strings.Join(cards, " • ")+". سبب الترتيب: "+reasons+". "+question,
		"I ranked the options around your request. Best stores: "+strings.Join(cards, " • ")+". Why this order: "+reasons+". "+question)
}

// WelcomeMessage first assistant message in a fresh session
func WelcomeMessage(lang string) string {
	return pick(lang,
		"هلا بيك. آني مساعدك بالطلب: أرتبلك المتاجر وأسويلك سلة جاهزة على ذوقك.",
		"Welcome! I am your ordering assistant: I rank stores for you and build a ready basket around your taste.")
}

// SummarizeRecentContext compact echo of the last user messages
func SummarizeRecentContext(messages []entity.ChatMessage, lang string) string {
	var recent []string
	for _, msg := range messages {
		if msg.Role != "user" {
			continue
		}
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		recent = append(recent, text)
	}
	if len(recent) > 2 {
		recent = recent[len(recent)-2:]
	}
	switch len(recent) {
	case 0:
		return ""
	case 1:
		return pick(lang, "آخر طلب: "+recent[0]+".", "Last request: "+recent[0]+".")
	}
	return pick(lang,
		"آخر طلبين: "+recent[0]+" ثم "+recent[1]+".",
		"Last two requests: "+recent[0]+", then "+recent[1]+".")
}
