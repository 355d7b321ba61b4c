package analysis

// Each language carries its own complete template. The JSON field names are
// part of the response contract and stay identical across languages; only
// the instruction text differs. Segment-count bounds are 3-5 for a project
// analysis and 2-4 for a subproject (narrow page) analysis.

const projectTemplateUK = `Ти — досвідчений маркетинговий аналітик. Проаналізуй вміст сайту нижче та визнач продукт, його сильні сторони й цільові аудиторії.

Вміст сайту:
%s

Поверни СТРОГО один JSON-об'єкт із такими полями (назви полів — англійською, як вказано):
{
  "summary": "короткий опис продукту (2-3 речення)",
  "key_features": ["ключова перевага 1", "ключова перевага 2", "..."],
  "brand_voice": "опис тону бренду одним-двома реченнями",
  "target_audiences": [
    {
      "id": "s1",
      "name": "назва сегмента",
      "description": "опис сегмента",
      "pain_points": ["біль 1", "біль 2"],
      "needs": ["потреба 1", "потреба 2"],
      "demographics": "вік, стать, локація, дохід — текстом або об'єктом {age, gender, location, income}"
    }
  ]
}

Вимоги:
- Від 3 до 5 сегментів у target_audiences.
- Кожен сегмент має щонайменше один pain_point і одну потребу.
- Відповідь — ЛИШЕ JSON-об'єкт, без жодного тексту до чи після нього.`

const projectTemplateRU = `Ты — опытный маркетинговый аналитик. Проанализируй содержимое сайта ниже и определи продукт, его сильные стороны и целевые аудитории.

Содержимое сайта:
%s

Верни СТРОГО один JSON-объект со следующими полями (имена полей — на английском, как указано):
{
  "summary": "краткое описание продукта (2-3 предложения)",
  "key_features": ["ключевое преимущество 1", "ключевое преимущество 2", "..."],
  "brand_voice": "описание тона бренда в одном-двух предложениях",
  "target_audiences": [
    {
      "id": "s1",
      "name": "название сегмента",
      "description": "описание сегмента",
      "pain_points": ["боль 1", "боль 2"],
      "needs": ["потребность 1", "потребность 2"],
      "demographics": "возраст, пол, локация, доход — текстом или объектом {age, gender, location, income}"
    }
  ]
}

Требования:
- От 3 до 5 сегментов в target_audiences.
- У каждого сегмента минимум один pain_point и одна потребность.
- Ответ — ТОЛЬКО JSON-объект, без какого-либо текста до или после него.`

const projectTemplateEN = `You are an experienced marketing analyst. Analyze the website content below and identify the product, its strengths, and its target audiences.

Website content:
%s

Return STRICTLY one JSON object with exactly these fields:
{
  "summary": "short product description (2-3 sentences)",
  "key_features": ["key feature 1", "key feature 2", "..."],
  "brand_voice": "one or two sentences describing the brand tone",
  "target_audiences": [
    {
      "id": "s1",
      "name": "segment name",
      "description": "segment description",
      "pain_points": ["pain 1", "pain 2"],
      "needs": ["need 1", "need 2"],
      "demographics": "age, gender, location, income — as free text or an object {age, gender, location, income}"
    }
  ]
}

Requirements:
- Between 3 and 5 segments in target_audiences.
- Every segment has at least one pain_point and one need.
- Respond with NOTHING but the JSON object — no text before or after it.`

const subprojectTemplateUK = `Ти — досвідчений маркетинговий аналітик. Нижче — вміст окремої сторінки типу "%s" під назвою "%s", що належить до більшого продукту. Поміркуй, чому людина могла б відвідати саме цю сторінку, і визнач її вужчі аудиторії.

Вміст сторінки:
%s

Поверни СТРОГО один JSON-об'єкт із такими полями (назви полів — англійською, як вказано):
{
  "summary": "короткий опис пропозиції цієї сторінки (2-3 речення)",
  "key_features": ["ключова перевага 1", "..."],
  "brand_voice": "опис тону бренду",
  "target_audiences": [
    {
      "id": "s1",
      "name": "назва сегмента",
      "description": "опис сегмента",
      "pain_points": ["біль 1"],
      "needs": ["потреба 1"],
      "demographics": "вік, стать, локація, дохід — текстом або об'єктом {age, gender, location, income}"
    }
  ]
}

Вимоги:
- Від 2 до 4 сегментів у target_audiences.
- Кожен сегмент має щонайменше один pain_point і одну потребу.
- Відповідь — ЛИШЕ JSON-об'єкт, без жодного тексту до чи після нього.`

const subprojectTemplateRU = `Ты — опытный маркетинговый аналитик. Ниже — содержимое отдельной страницы типа "%s" с названием "%s", относящейся к более крупному продукту. Подумай, зачем человек мог бы посетить именно эту страницу, и определи её более узкие аудитории.

Содержимое страницы:
%s

Верни СТРОГО один JSON-объект со следующими полями (имена полей — на английском, как указано):
{
  "summary": "краткое описание предложения этой страницы (2-3 предложения)",
  "key_features": ["ключевое преимущество 1", "..."],
  "brand_voice": "описание тона бренда",
  "target_audiences": [
    {
      "id": "s1",
      "name": "название сегмента",
      "description": "описание сегмента",
      "pain_points": ["боль 1"],
      "needs": ["потребность 1"],
      "demographics": "возраст, пол, локация, доход — текстом или объектом {age, gender, location, income}"
    }
  ]
}

Требования:
- От 2 до 4 сегментов в target_audiences.
- У каждого сегмента минимум один pain_point и одна потребность.
- Ответ — ТОЛЬКО JSON-объект, без какого-либо текста до или после него.`

const subprojectTemplateEN = `You are an experienced marketing analyst. Below is the content of a single "%s" page named "%s" that belongs to a larger product. Reason about why someone would visit this specific page, and identify its narrower audiences.

Page content:
%s

Return STRICTLY one JSON object with exactly these fields:
{
  "summary": "short description of this page's offer (2-3 sentences)",
  "key_features": ["key feature 1", "..."],
  "brand_voice": "brand tone description",
  "target_audiences": [
    {
      "id": "s1",
      "name": "segment name",
      "description": "segment description",
      "pain_points": ["pain 1"],
      "needs": ["need 1"],
      "demographics": "age, gender, location, income — as free text or an object {age, gender, location, income}"
    }
  ]
}

Requirements:
- Between 2 and 4 segments in target_audiences.
- Every segment has at least one pain_point and one need.
- Respond with NOTHING but the JSON object — no text before or after it.`

var projectTemplates = map[Language]string{
	LangUK: projectTemplateUK,
	LangRU: projectTemplateRU,
	LangEN: projectTemplateEN,
}

var subprojectTemplates = map[Language]string{
	LangUK: subprojectTemplateUK,
	LangRU: subprojectTemplateRU,
	LangEN: subprojectTemplateEN,
}
