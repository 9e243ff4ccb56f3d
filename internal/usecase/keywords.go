package usecase

// Keyword sets drive intent detection. They are grouped here, tagged by
// language, and kept out of the detection code so the detector stays a
// pure function of (normalized text, sets) and the lists can be swapped
// for tests or another locale.

// Keyword one detection literal with its language tag
type Keyword struct {
	Lang string // "ar", "en"
	Text string
}

// CategoryHint maps a category key to its trigger words
type CategoryHint struct {
	Key   string
	Words []Keyword
}

// KeywordSets the full detection vocabulary for one deployment
type KeywordSets struct {
	Cheap        []Keyword
	TopRated     []Keyword
	FreeDelivery []Keyword
	Fast         []Keyword
	Order        []Keyword
	Confirm      []Keyword
	Cancel       []Keyword
	Support      []Keyword
	Comparison   []Keyword
	Offers       []Keyword
	DiscoverNew  []Keyword
	Evaluate     []Keyword
	MoodBased    []Keyword

	Greeting    []Keyword
	Thanks      []Keyword
	Chitchat    []Keyword
	OrderDomain []Keyword

	Group  []Keyword
	Family []Keyword
	Solo   []Keyword

	WeatherChitchat []Keyword
	JokeChitchat    []Keyword
	BotIdentity     []Keyword
	MoodChitchat    []Keyword

	Breakfast []Keyword
	Lunch     []Keyword
	Dinner    []Keyword
	Snack     []Keyword

	Spicy   []Keyword
	Mild    []Keyword
	Dietary []Keyword

	SwitchToArabic  []Keyword
	SwitchToEnglish []Keyword

	Categories []CategoryHint

	// DialectMap folds colloquial Iraqi tokens onto standard-ish stems.
	// Values must be fixed points of normalization so the pass stays
	// idempotent.
	DialectMap map[string]string

	Stopwords []string
}

func ar(words ...string) []Keyword {
	out := make([]Keyword, 0, len(words))
	for _, w := range words {
		out = append(out, Keyword{Lang: "ar", Text: w})
	}
	return out
}

func en(words ...string) []Keyword {
	out := make([]Keyword, 0, len(words))
	for _, w := range words {
		out = append(out, Keyword{Lang: "en", Text: w})
	}
	return out
}

func both(arWords []Keyword, enWords []Keyword) []Keyword {
	return append(append([]Keyword{}, enWords...), arWords...)
}

// DefaultKeywordSets the production bilingual vocabulary
func DefaultKeywordSets() *KeywordSets {
	return &KeywordSets{
		Cheap: both(
			ar("ارخص", "رخيص", "اقتصادي", "سعر", "اقل", "أقل"),
			en("cheap", "low price", "budget"),
		),
		TopRated: both(
			ar("افضل", "أفضل", "احسن", "أحسن", "اعلى تقييم", "أعلى تقييم"),
			en("top rated", "high rating"),
		),
		FreeDelivery: both(
			ar("توصيل مجاني", "بدون توصيل"),
			en("free delivery"),
		),
		Fast: both(
			ar("سريع", "بسرعة", "عاجل", "مستعجل"),
			en("fast", "quick", "hurry"),
		),
		Order: both(
			ar("اطلب", "أطلب", "طلب", "اريد", "أريد", "ابغى", "ابي", "سو", "سوي", "جيب"),
			en("order"),
		),
		Confirm: both(
			ar("موافق", "ثبت", "تثبيت", "تمام", "اوكي"),
			en("ok", "confirm"),
		),
		Cancel: both(
			ar("الغ", "إلغ", "الغاء", "إلغاء", "مو هسه"),
			en("cancel", "not now"),
		),
		Support: both(
			ar("شكوى", "مشكلة", "مشكله", "تاخر", "تأخر", "ناقص", "خطأ بالطلب", "استرجاع", "ما وصل"),
			en("complaint", "problem", "issue", "late order", "missing item", "refund"),
		),
		Comparison: both(
			ar("قارن", "مقارنة", "الفرق بين", "ايهما"),
			en("compare", "versus", "vs", "difference between"),
		),
		Offers: both(
			ar("عروض", "عرض", "خصومات", "تخفيضات", "تنزيلات"),
			en("offers", "deals", "discounts", "promo"),
		),
		DiscoverNew: both(
			ar("شي جديد", "مطاعم جديدة", "جرب جديد", "اكتشف"),
			en("something new", "new places", "discover"),
		),
		Evaluate: both(
			ar("شرايك", "رايك", "تقييمه", "يستاهل", "ينصح"),
			en("is it good", "worth it", "your opinion", "rate this"),
		),
		MoodBased: both(
			ar("مزاجي", "على مزاجي", "نفسيتي", "مليت", "محتار"),
			en("my mood", "feeling like", "surprise me", "cant decide"),
		),
		Greeting: both(
			ar("هلا", "السلام عليكم", "شلونك", "مرحبا"),
			en("hello", "hi", "hey"),
		),
		Thanks: both(
			ar("شكرا", "ممنون", "تسلم"),
			en("thank you", "thanks"),
		),
		Chitchat: both(
			ar("شنو الاخبار", "شلون الجو", "منو انت", "سؤال", "نكتة", "ضحكني", "كيف حالك"),
			en("who are you", "joke"),
		),
		OrderDomain: both(
			ar("مطعم", "متجر", "طلب", "وجبة", "اكل", "أكل", "سلة", "توصيل", "عنوان", "دينار", "خصم", "منتج"),
			en("delivery", "restaurant", "store", "product", "price"),
		),
		Group: both(
			ar("ضيوف", "جماعة", "للجمعة", "ربعي"),
			en("guests", "group"),
		),
		Family: both(
			ar("عائلة", "عايلة", "اسرة", "أسرة", "اهلي"),
			en("family"),
		),
		Solo: both(
			ar("لوحدي", "وحدي", "وحده"),
			en("alone", "solo", "just me"),
		),
		WeatherChitchat: both(
			ar("جو", "طقس", "مطر"),
			en("weather"),
		),
		JokeChitchat: both(
			ar("نكتة", "ضحك"),
			en("joke"),
		),
		BotIdentity: both(
			ar("منو انت", "شتكدر"),
			en("who are you", "what can you do"),
		),
		MoodChitchat: both(
			ar("شلونك", "شخبارك"),
			en("how are you", "how is it going"),
		),
		Breakfast: both(ar("فطور", "ريوك", "ريوق"), en("breakfast")),
		Lunch:     both(ar("غداء", "غدا"), en("lunch")),
		Dinner:    both(ar("عشاء", "عشا"), en("dinner")),
		Snack:     both(ar("سناك", "خفيف", "لقمة"), en("snack", "light meal")),
		Spicy:     both(ar("حار", "سبايسي"), en("spicy", "hot sauce")),
		Mild:      both(ar("بدون حار", "مو حار"), en("not spicy", "mild")),
		Dietary: both(
			ar("نباتي", "بدون لحم", "صحي", "دايت", "بدون غلوتين", "حساسية"),
			en("vegetarian", "vegan", "no meat", "healthy", "diet", "gluten free", "allergy"),
		),
		SwitchToArabic:  both(ar("عربي", "احجي عربي", "بالعربي"), en("arabic please", "in arabic")),
		SwitchToEnglish: both(ar("بالانكليزي", "انكليزي"), en("english please", "in english", "speak english")),
		Categories: []CategoryHint{
			{Key: "burgers", Words: both(ar("بركر", "برغر", "برجر"), en("burger"))},
			{Key: "pizza", Words: both(ar("بيتزا"), en("pizza"))},
			{Key: "shawarma", Words: ar("شاورما")},
			{Key: "grills", Words: ar("مشاوي", "كباب", "شيش", "تكه")},
			{Key: "chicken", Words: both(ar("دجاج", "بروستد", "كرسبي"), en("fried chicken"))},
			{Key: "drinks", Words: both(ar("مشروب", "عصير", "بيبسي", "كوكا", "قهوة"), en("juice", "coffee"))},
			{Key: "sweets", Words: both(ar("حلويات", "كيك", "دونات", "تشيز"), en("dessert", "cake"))},
			{Key: "grocery", Words: both(ar("بقالة", "سوبر", "ماركت", "مواد"), en("grocery"))},
			{Key: "vegetables", Words: both(ar("خضار", "فواكه"), en("vegetables", "fruits"))},
			{Key: "bakery", Words: both(ar("معجنات", "خبز", "فرن"), en("bakery", "pastry"))},
		},
		DialectMap: map[string]string{
			"بريد":  "اريد",
			"نريد":  "اريد",
			"دتريد": "تريد",
			"شكد":   "كم",
			"جم":    "كم",
			"هواي":  "كثير",
			"زين":   "جيد",
			"خوش":   "جيد",
			"اكو":   "يوجد",
			"ماكو":  "لا يوجد",
			"شنو":   "ماذا",
			"وين":   "اين",
			"هسه":   "الان",
			"هسع":   "الان",
			"اني":   "انا",
			"احنه":  "نحن",
			"يمعود": "",
		},
		Stopwords: []string{
			"the", "a", "to", "for",
			"ابي", "اريد", "أريد", "ابغى",
			"من", "على", "في", "الى", "إلى", "عن", "مع",
			"لو", "اذا", "إذا", "ماذا", "هذا", "هاي", "و",
		},
	}
}
