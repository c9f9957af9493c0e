package content

import "gift-experience-service/internal/domain"

// DefaultScriptID is served when a client does not ask for a script.
const DefaultScriptID = "birthday-28"

var optionOrder = []domain.Category{
	domain.CategoryPainting,
	domain.CategoryThrowing,
	domain.CategoryHandbuilt,
	domain.CategoryCombine,
}

// DefaultScript returns the built-in birthday script.
func DefaultScript() domain.Script {
	return domain.Script{
		ID: DefaultScriptID,
		Lines: []domain.Line{
			{Text: "Helloo sayangkuu cintakuuuu 😏"},
			{Text: "Happy 28th Birthday for you! 🎉", Image: "birthdayImg.webp", Celebrate: true},
			{Text: "Can you believe you’re officially 2️⃣8️⃣ today?", Image: "28.gif"},
			{Text: "Do you you remember our last travel ? It was 4 months ago 🧐"},
			{Text: "We were flying off to Vietnam so you can learn how to ride a bike 🛵", Image: "vietnam-bike.webp"},
			{Text: "Then training like pros at Superbon", Image: "muaythai.webp"},
			{Text: "Time sure flies huh, don't you think so?"},
			{Text: "Anyway, here’s to diving into our new hobbies and owning every adventure 🍻"},
			{Text: "(well, for you it's the adventure of owning Kuskus)", Image: "kuskus.webp"},
			{Text: "I pray for you to always feel safe, protected, and worry-free", Image: "worry.jpg"},
			{Text: "and I want you to live the life you love, baby."},
			{Text: "Here’s to you, my love: may this year overflow with joy, peace, and...."},
			{Text: "LOTS of MONEY ", Image: "money.webp"},
			{Text: "And wherever life takes you, know that I (and the dogs) am here for you always. 💖", Image: "last.png"},
			{Text: "Phew, that was a lot wkwkwkwkwk"},
			{Text: "Okay, enough formalities. Here's your gift!"},
		},
		QuizIntro: "Wait wait, I want the gift to be the one you prefer 😀 😉",
		Questions: []domain.Question{
			question("Which activity appeals to you most?",
				"Adding vibrant color, patterns, and personal flair to ready-made pieces.",
				"Using a spinning platform to shape a medium into smooth, symmetrical forms.",
				"Molding and sculpting material by hand to create organic, sculptural pieces.",
				"Combining both spinning and hand techniques for a truly unique creation.",
			),
			question("How would you describe your creative style?",
				"Painterly and detail-oriented.",
				"Precise, functional, and form-focused.",
				"Organic, sculptural, and textural.",
				"Experimental and curious, love mixing approaches.",
			),
			question("What type of finished object excites you most?",
				"A beautifully decorated mug, plate, or bowl bursting with color.",
				"A perfectly shaped vessel spun into balance and symmetry.",
				"A one-of-a-kind sculpture or freeform object built entirely by hand.",
				"An art piece that blends both wheel-spun curves and hand-formed details.",
			),
			question("How much material would you like to work with?",
				"I prefer focusing on decorating pre-made pieces (no raw shaping).",
				"I’d enjoy shaping on a spinning platform.",
				"I’d enjoy handcrafting the material.",
				"I’d like enough material to spin and hand-build.",
			),
		},
		Classes: map[domain.Category]domain.ClassDetail{
			domain.CategoryPainting: {
				Description: "Painting ceramics is a wonderful way to add color, texture, and personal expression to your pottery after it’s been shaped, fired, and sometimes glazed. The process typically involves using ceramic paints (also called under-glazes or glazes) to decorate pieces that will be fired in a kiln.",
				Items: []string{
					"All material (pottery tools & painting equipment)",
					"2 pieces of bisque ceramic (cup, plate, mini vase, bowl)",
					"class session with instructor (max 2 hours)",
					"Receive your masterpieces in 1-2 weeks after class",
				},
				Image: "paintingclassImg.webp",
			},
			domain.CategoryThrowing: {
				Description: "Throwing involves using a wheel to rotate the clay while the potter shapes it using their hands, fingers, and tools. This method is often used to create symmetrical, functional pieces like bowls, cups, plates, and vases, but it can also be used for sculptural forms.",
				Items: []string{
					"All material (pottery tools & equipment)",
					"1.5 kg of stoneware clays",
					"free glaze up to 2 pieces",
					"class session with instructor (max 2 hours)",
					"Receive your masterpieces in 3-4 weeks after class",
				},
				Image: "throwingclassImg.webp",
			},
			domain.CategoryHandbuilt: {
				Description: "Hand-building is a traditional and highly versatile method in pottery, where the artist shapes the clay using various tools and techniques. It’s a fantastic way to create unique, organic forms.",
				Items: []string{
					"All material (pottery tools & equipment)",
					"1.5 kg of stoneware clays",
					"free glaze up to 2 pieces",
					"class session with instructor (max 2 hours)",
					"Receive your masterpieces in 3-4 weeks after class",
				},
				Image: "handbuiltclassImg.webp",
			},
			domain.CategoryCombine: {
				Description: "Combine is the combination between throwing and hand-building. The potter will get 2 lessons in 1 time class, therefore it would be more practical for those who love messing and playing with clay.",
				Items: []string{
					"All material (pottery tools & equipment)",
					"2 kg of stoneware clays",
					"free glaze up to 3 pieces",
					"class session with instructor (max 2 hours)",
					"Receive your masterpieces in 3-4 weeks after class",
				},
				Image: "combineclassImg.webp",
			},
		},
	}
}

// question pairs option texts with the categories in enumeration order.
func question(prompt string, options ...string) domain.Question {
	q := domain.Question{Prompt: prompt}
	for i, text := range options {
		q.Options = append(q.Options, domain.Option{Text: text, Category: optionOrder[i]})
	}
	return q
}
