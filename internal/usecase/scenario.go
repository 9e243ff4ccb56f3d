package usecase

import (
	"fmt"
	"strings"
)

// The scenario library is a fixed cross product of intent, reply style,
// audience, meal and priority. Openers and slot questions are picked by
// a stable hash so the same conversation state always produces the same
// wording, with no randomness anywhere.

var scenarioIntents = []string{
	"BROWSE", "RECOMMEND", "MOOD_BASED", "ORDER_DIRECT",
	"OFFERS", "DISCOVER_NEW", "EVALUATE", "SUPPORT",
}

var (
	scenarioStyles     = []string{"neutral", "formal", "playful", "rush"}
	scenarioAudiences  = []string{"unknown", "solo", "family", "group"}
	scenarioMeals      = []string{"any", "breakfast", "lunch", "dinner", "snack"}
	scenarioPriorities = []string{"balanced", "cheap", "fast", "quality"}
)

var scenarioOpenersAr = map[string][]string{
	"BROWSE": {
		"على راسي، خليني أفهم ذوقك أكثر حتى أضبط الاختيارات.",
		"ممتاز، نرتبها خطوة بخطوة حتى يطلع الخيار مضبوط.",
	},
	"RECOMMEND": {
		"أكيد، أرتبلك ترشيح ذكي لكن أولاً أفهمك بدقة.",
		"تم، قبل الترشيح خليني آخذ منك كم معلومة سريعة.",
	},
	"MOOD_BASED": {
		"حلو، نختار على مزاجك اليوم.",
		"تمام، خل نحول المزاج لطلب مضبوط.",
	},
	"ORDER_DIRECT": {
		"وصلت فكرتك، بس خليني أحدد تفاصيل بسيطة حتى ما نخرب الطلب.",
		"ممتاز، قبل التثبيت آخذ منك نقطتين حتى يكون الطلب دقيق.",
	},
	"OFFERS": {
		"تمام، أشوفلك العروض المناسبة إلك.",
		"أكيد، نخلي العرض فعلاً مناسب لمزاجك.",
	},
	"DISCOVER_NEW": {
		"حلو، إذا تريد جديد فعلًا خلينا نحدد الاتجاه.",
		"ممتاز، أطلعلك الجديد بس حسب تفضيلك أنت.",
	},
	"EVALUATE": {
		"أكيد، أقيمه إلك بشكل واضح وبدون مجاملة.",
		"تمام، نعطيك تقييم متوازن يفيدك بالقرار.",
	},
	"SUPPORT": {
		"حقك علينا، خليني أتابعها وياك خطوة بخطوة.",
		"آسف على الإزعاج، راح أتعامل وياها مباشرة.",
	},
}

var scenarioOpenersEn = map[string][]string{
	"BROWSE": {
		"Sure, let me understand your taste first to tune the choices.",
		"Great, we can do this step by step for a precise pick.",
	},
	"RECOMMEND": {
		"Absolutely, I will recommend smartly after a quick understanding.",
		"Perfect, let me capture a few details before recommending.",
	},
	"MOOD_BASED": {
		"Nice, let us pick based on your current mood.",
		"Great, we will convert your mood into the right order.",
	},
	"ORDER_DIRECT": {
		"Got it. Let me lock a couple details so the order is accurate.",
		"Perfect. Before checkout, I need two quick details.",
	},
	"OFFERS": {
		"Great, I will surface offers that match you best.",
		"Sure, let us make the offer truly relevant to your needs.",
	},
	"DISCOVER_NEW": {
		"Nice, if you want new options we should set direction first.",
		"Great, I can show new places based on your preference.",
	},
	"EVALUATE": {
		"Sure, I can evaluate it clearly and objectively.",
		"Perfect, I will give you a balanced evaluation.",
	},
	"SUPPORT": {
		"I am sorry about this. Let me handle it with you step by step.",
		"Thanks for reporting this. I will follow it up right away.",
	},
}

// trackQuestions slot-filling question pools per language
var trackQuestions = map[string]map[string][]string{
	"cuisine": {
		"ar": {
			"تميل اليوم لشرقي لو غربي؟",
			"تحب مشاوي، برغر، بيتزا، لو أكل خفيف؟",
			"شنو مزاجك اليوم: عراقي، إيطالي، سريع، لو خفيف؟",
			"تحب نروح على مطاعم مجربة لو نجرب شي جديد؟",
			"تفضّل أكل بيتي وطعم تقليدي لو شي غربي سريع؟",
			"تحب يكون الأكل حار لو عادي؟",
		},
		"en": {
			"Do you prefer Eastern or Western today?",
			"Would you like grills, burgers, pizza, or lighter food?",
			"What is your mood today: Iraqi, Italian, fast food, or light meals?",
			"Would you prefer trusted places or a new experience?",
			"Do you prefer spicy food or regular?",
		},
	},
	"budget": {
		"ar": {
			"شكد ميزانيتك تقريباً بالدينار؟",
			"تحبها اقتصادية لو عادي لو فخمة؟",
			"تحب أخلي السلة ضمن مبلغ معين؟",
			"تقريباً كم تريد تدفع للطلب كامل؟",
			"نركّز على الأرخص حتى لو الخيارات أقل؟",
		},
		"en": {
			"What is your approximate budget in IQD?",
			"Do you prefer budget, medium, or premium options?",
			"Do you want me to keep the basket under a target amount?",
			"How much do you want to spend for the full order?",
			"Should I prioritize the cheapest options even with fewer choices?",
		},
	},
	"speed": {
		"ar": {
			"الأولوية عندك السرعة لو السعر؟",
			"تريد أسرع توصيل حتى لو أغلى شوي؟",
			"مستعجل لو عادي إذا التوصيل أخذ وقت أكثر؟",
			"تحب توصيل قريب وسريع لو سعر أقل حتى لو أبعد؟",
			"نرتبها على أسرع وصول لو أفضل قيمة؟",
		},
		"en": {
			"Is your priority speed or price?",
			"Do you want fastest delivery even if slightly higher price?",
			"Are you in a hurry, or is extra delivery time okay?",
			"Do you want nearby fast delivery or lower price with longer time?",
			"Should I optimize for fastest arrival or best value?",
		},
	},
	"meal": {
		"ar": {
			"الطلب فطور لو غداء لو عشاء؟",
			"مزاجك وجبة دسمة لو خفيفة؟",
			"الطلب إلك وحدك لو للجمعه؟",
			"تحب وجبة رئيسية لو سناك سريع؟",
			"تحب نضيف مشروب أو حلو ويا الوجبة؟",
		},
		"en": {
			"Is this for breakfast, lunch, or dinner?",
			"Do you want a heavy meal or a light one?",
			"Is this for you only or for a group?",
			"Do you want a full meal or a quick snack?",
			"Would you like a drink or dessert with it?",
		},
	},
	"audience": {
		"ar": {
			"الطلب لشخص واحد لو للعائلة؟",
			"كم شخص تقريباً حتى أضبط الكمية؟",
			"عدكم ضيوف اليوم؟ حتى أرتب كميات مناسبة.",
			"تحب وجبات فردية لو صواني مشاركة؟",
			"تريد كمية تشبع الكل لو خيارات منوعة أكثر؟",
		},
		"en": {
			"Is this for one person or family?",
			"How many people approximately?",
			"Do you have guests today so I can size portions correctly?",
			"Do you prefer individual meals or sharing platters?",
			"Should we prioritize larger portions or more variety?",
		},
	},
	"dietary": {
		"ar": {
			"عندك حساسية أو نظام غذائي معين؟",
			"تحب بدون لحم أو خيارات صحية اليوم؟",
			"في مكونات ما تريدها نهائياً؟",
			"تحب نركز على أكل صحي وسعرات أقل؟",
			"تريد خيارات نباتية أو بدون غلوتين؟",
		},
		"en": {
			"Do you have any allergy or dietary requirement?",
			"Would you like no-meat or healthier choices today?",
			"Any ingredients you want me to avoid completely?",
			"Should I focus on healthier, lower-calorie options?",
			"Do you need vegetarian or gluten-free options?",
		},
	},
}

// ScenarioBlueprint one precomputed row of the scenario table
type ScenarioBlueprint struct {
	ID         string
	Intent     string
	Style      string
	Audience   string
	Meal       string
	Priority   string
	Phase      string
	OpenerAr   string
	OpenerEn   string
	TrackOrder []string
}

var scenarioLibrary = buildScenarioLibrary()

func buildScenarioLibrary() []ScenarioBlueprint {
	size := len(scenarioIntents) * len(scenarioStyles) * len(scenarioAudiences) *
		len(scenarioMeals) * len(scenarioPriorities)
	out := make([]ScenarioBlueprint, 0, size)
	id := 1
	for _, intent := range scenarioIntents {
		for _, style := range scenarioStyles {
			for _, audience := range scenarioAudiences {
				for _, meal := range scenarioMeals {
					for _, priority := range scenarioPriorities {
						phase := "discovery"
						if intent == "SUPPORT" {
							phase = "support"
						}
						openersAr := scenarioOpenersAr[intent]
						openersEn := scenarioOpenersEn[intent]
						openerIndex := (id + len(style) + len(priority)) % len(openersAr)

						var track []string
						switch priority {
						case "fast":
							track = []string{"speed", "cuisine", "budget", "meal", "audience", "dietary"}
						case "cheap":
							track = []string{"budget", "cuisine", "speed", "meal", "audience", "dietary"}
						default:
							track = []string{"cuisine", "budget", "speed", "meal", "audience", "dietary"}
						}

						out = append(out, ScenarioBlueprint{
							ID:         fmt.Sprintf("scn_%04d", id),
							Intent:     intent,
							Style:      style,
							Audience:   audience,
							Meal:       meal,
							Priority:   priority,
							Phase:      phase,
							OpenerAr:   openersAr[openerIndex],
							OpenerEn:   openersEn[openerIndex],
							TrackOrder: track,
						})
						id++
					}
				}
			}
		}
	}
	return out
}

// ScenarioLibrarySize reports the number of precomputed blueprints
func ScenarioLibrarySize() int {
	return len(scenarioLibrary)
}

// simpleHash stable non-negative hash over the seed's code points
func simpleHash(value string) int {
	var hash int64
	for _, r := range value {
		hash = (hash*31 + int64(r)) % 2147483647
	}
	if hash < 0 {
		hash = -hash
	}
	return int(hash)
}

// PickScenarioBlueprint selects deterministically: exact match first,
// then same-intent rows, then the whole table.
func PickScenarioBlueprint(intent, style, audience, meal, priority, seed string) ScenarioBlueprint {
	if intent == "" {
		intent = "BROWSE"
	}
	if style == "" {
		style = "neutral"
	}
	if audience == "" {
		audience = "unknown"
	}
	if meal == "" {
		meal = "any"
	}
	if priority == "" {
		priority = "balanced"
	}

	var exact, sameIntent []ScenarioBlueprint
	for _, s := range scenarioLibrary {
		if s.Intent == intent {
			sameIntent = append(sameIntent, s)
			if s.Style == style && s.Audience == audience && s.Meal == meal && s.Priority == priority {
				exact = append(exact, s)
			}
		}
	}
	pool := exact
	if len(pool) == 0 {
		pool = sameIntent
	}
	if len(pool) == 0 {
		pool = scenarioLibrary
	}
	key := strings.Join([]string{intent, style, audience, meal, priority, seed}, "|")
	return pool[simpleHash(key)%len(pool)]
}

// PickScenarioQuestion returns a stable slot-filling question. Unknown
// slot keys fall back to the cuisine pool.
func PickScenarioQuestion(slotKey, lang, seed string) string {
	entry, ok := trackQuestions[slotKey]
	if !ok {
		entry = trackQuestions["cuisine"]
	}
	items := entry["ar"]
	if lang == "en" {
		items = entry["en"]
	}
	key := strings.Join([]string{slotKey, seed, lang}, "|")
	return items[simpleHash(key)%len(items)]
}
